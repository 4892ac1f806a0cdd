package mcp

import (
	"context"
	"fmt"
	"log"

	"timenav/internal/navigator"
	"timenav/internal/timesheet"
)

// GotoPageTool drives the navigator to a named application page, hopping
// through the portal and waiting out login as needed.
type GotoPageTool struct {
	nav pageNavigator
}

func (t *GotoPageTool) Name() string { return "goto_page" }

func (t *GotoPageTool) Description() string {
	return "Navigate the browser to a named page: portal_home, app_home, time_tracking, or weekly_sheet. Handles portal hops, app launch popups, and waiting for human login."
}

func (t *GotoPageTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"target": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"portal_home", "app_home", "time_tracking", "weekly_sheet"},
				"description": "The page to end up on",
			},
		},
		"required": []string{"target"},
	}
}

func (t *GotoPageTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	target, err := argString(args, "target")
	if err != nil {
		return nil, err
	}

	page, err := t.nav.Goto(ctx, navigator.PageState(target))
	if err != nil {
		return nil, err
	}

	url, err := page.URL()
	if err != nil {
		url = ""
	}
	return map[string]interface{}{
		"success": true,
		"state":   target,
		"url":     url,
	}, nil
}

// PageStateTool reports where the browser currently is without moving it.
type PageStateTool struct {
	nav pageNavigator
}

func (t *PageStateTool) Name() string { return "page_state" }

func (t *PageStateTool) Description() string {
	return "Classify the active browser page (login, portal_home, app_home, time_tracking, weekly_sheet, or unknown) and return its URL."
}

func (t *PageStateTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *PageStateTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	state, url, err := t.nav.Observe()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"state":   string(state),
		"url":     url,
	}, nil
}

// LogTimeTool books hours for a single day on the time tracking page.
type LogTimeTool struct {
	rec timeRecorder
}

func (t *LogTimeTool) Name() string { return "log_time" }

func (t *LogTimeTool) Description() string {
	return "Record hours for a date in the timesheet. Work days book against the configured project; sick/vacation/holiday days book against the internal customer."
}

func (t *LogTimeTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"date": map[string]interface{}{
				"type":        "string",
				"description": "Date to record, YYYY-MM-DD or DD/MM/YYYY",
			},
			"hours": map[string]interface{}{
				"type":        "number",
				"description": "Decimal hours to record, e.g. 9.5",
			},
			"day_type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"work", "sick", "child_sick", "parent_sick", "spouse_sick", "public_holiday", "reserve_duty", "vacation"},
				"description": "What the hours are booked against; defaults to work",
			},
		},
		"required": []string{"date", "hours"},
	}
}

func (t *LogTimeTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	date, err := argDate(args, "date")
	if err != nil {
		return nil, err
	}
	hours, err := argFloat(args, "hours")
	if err != nil {
		return nil, err
	}
	if hours <= 0 || hours > 24 {
		return nil, fmt.Errorf("hours must be in (0, 24], got %v", hours)
	}
	rawType, err := optionalString(args, "day_type", string(timesheet.DayWork))
	if err != nil {
		return nil, err
	}
	dayType, err := timesheet.ParseDayType(rawType)
	if err != nil {
		return nil, err
	}

	if err := t.rec.Record(ctx, date, hours, dayType); err != nil {
		return nil, err
	}

	log.Printf("log_time: %s %.2f hours (%s)", date.Format("2006-01-02"), hours, dayType)
	return map[string]interface{}{
		"success":  true,
		"date":     date.Format("2006-01-02"),
		"column":   timesheet.DateKey(date),
		"hours":    hours,
		"day_type": string(dayType),
	}, nil
}

// WeekSummaryTool reads back the grid for the week containing a date.
type WeekSummaryTool struct {
	rec timeRecorder
}

func (t *WeekSummaryTool) Name() string { return "week_summary" }

func (t *WeekSummaryTool) Description() string {
	return "Read the timesheet grid for the week containing a date and return the recorded entries per day."
}

func (t *WeekSummaryTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"date": map[string]interface{}{
				"type":        "string",
				"description": "Any date inside the week, YYYY-MM-DD or DD/MM/YYYY",
			},
		},
		"required": []string{"date"},
	}
}

func (t *WeekSummaryTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	date, err := argDate(args, "date")
	if err != nil {
		return nil, err
	}

	entries, err := t.rec.Week(ctx, date)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	return map[string]interface{}{
		"success":     true,
		"week_of":     date.Format("2006-01-02"),
		"entries":     entries,
		"total_hours": total,
	}, nil
}

// ListPagesTool enumerates the open browser pages with their classified
// states, for diagnosing a wedged session.
type ListPagesTool struct {
	drv      pageLister
	patterns navigator.PatternTable
}

func (t *ListPagesTool) Name() string { return "list_pages" }

func (t *ListPagesTool) Description() string {
	return "List all open browser pages with their URLs and classified states. The last page listed is the active one."
}

func (t *ListPagesTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *ListPagesTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	pages, err := t.drv.Pages()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(pages))
	for _, p := range pages {
		url, err := p.URL()
		if err != nil {
			url = ""
		}
		out = append(out, map[string]interface{}{
			"id":    p.ID(),
			"url":   url,
			"state": string(t.patterns.Classify(url)),
		})
	}
	return map[string]interface{}{
		"success": true,
		"count":   len(out),
		"pages":   out,
	}, nil
}
