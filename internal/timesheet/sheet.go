package timesheet

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"timenav/internal/browser"
)

// sheetSelector is the week grid on the time tracking page.
const sheetSelector = "#timesheet_splits"

// Entry is one recorded day in the week grid.
type Entry struct {
	// Column is the grid column key, e.g. "sun_24".
	Column string `json:"column"`
	// Clock is the recorded time as shown, e.g. "9:30".
	Clock string `json:"clock"`
	// Hours is Clock as decimal hours.
	Hours float64 `json:"hours"`
	// LinkSelector locates the edit link for the existing entry, empty when
	// the cell has a value but no link.
	LinkSelector string `json:"link_selector,omitempty"`
}

// weekSnapshotJS walks the grid in the page and returns one record per cell
// that holds a non-zero time. Header normalization ("Sun, 24" -> "sun_24")
// must stay in sync with DateKey. Skips the customer/task/service columns and
// the totals row/column.
const weekSnapshotJS = `
() => {
	const table = document.querySelector('#timesheet_splits');
	if (!table) return [];
	const rows = Array.from(table.querySelectorAll('tr'));
	if (rows.length < 2) return [];

	const dateCols = {};
	Array.from(rows[0].querySelectorAll('td')).forEach((cell, i) => {
		const text = (cell.innerText || '').trim();
		if (i < 3 || text.includes('Total')) return;
		dateCols[i] = text.toLowerCase().replace(/\s+/g, '_').replace(/[^\w]/g, '');
	});

	const out = [];
	rows.slice(1).forEach((row, r) => {
		const cells = Array.from(row.querySelectorAll('td'));
		const first = ((cells[0] && cells[0].innerText) || '').trim();
		if (!first || first.includes('Totals')) return;

		for (const [idx, column] of Object.entries(dateCols)) {
			const i = Number(idx);
			if (i >= cells.length) continue;
			const cell = cells[i];
			const m = ((cell.innerText) || '').match(/\d{1,2}:\d{2}/);
			if (!m || m[0] === '0:00') continue;
			const link = cell.querySelector('a');
			out.push({
				column: column,
				clock: m[0],
				link: link ? '#timesheet_splits tr:nth-child(' + (r + 2) + ') td:nth-child(' + (i + 1) + ') a' : ''
			});
		}
	});
	return out;
}
`

// ParseWeek snapshots the week grid on the time tracking page into entries
// keyed by column. Only cells with a recorded time appear; a date with no
// entry is simply absent.
func ParseWeek(ctx context.Context, page browser.Page) (map[string]Entry, error) {
	if err := page.WaitElement(ctx, sheetSelector); err != nil {
		return nil, fmt.Errorf("timesheet grid not present: %w", err)
	}

	raw, err := page.Eval(ctx, weekSnapshotJS)
	if err != nil {
		return nil, fmt.Errorf("snapshot timesheet grid: %w", err)
	}

	var cells []struct {
		Column string `json:"column"`
		Clock  string `json:"clock"`
		Link   string `json:"link"`
	}
	if err := json.Unmarshal(raw, &cells); err != nil {
		return nil, fmt.Errorf("decode timesheet grid: %w", err)
	}

	entries := make(map[string]Entry, len(cells))
	for _, c := range cells {
		hours, err := ClockToHours(c.Clock)
		if err != nil {
			log.Printf("skipping malformed grid cell %s: %v", c.Column, err)
			continue
		}
		entries[c.Column] = Entry{
			Column:       c.Column,
			Clock:        c.Clock,
			Hours:        hours,
			LinkSelector: c.Link,
		}
	}
	log.Printf("parsed %d time entries from the week grid", len(entries))
	return entries, nil
}
