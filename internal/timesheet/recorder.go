package timesheet

import (
	"context"
	"fmt"
	"log"
	"time"

	"timenav/internal/browser"
	"timenav/internal/config"
	"timenav/internal/navigator"
)

// gridRefreshDelay gives the grid time to reload after the date field
// changes; the page swaps the whole table without a URL change, so there is
// nothing to wait on beyond the repaint.
const gridRefreshDelay = 2 * time.Second

// PageNavigator is the slice of the navigator the recorder depends on.
type PageNavigator interface {
	Goto(ctx context.Context, target navigator.PageState) (browser.Page, error)
}

// Recorder books time entries on the time tracking page. Strictly sequential
// use, like the navigator it drives.
type Recorder struct {
	nav PageNavigator
	cfg config.TimesheetConfig

	// refreshDelay is overridable for tests.
	refreshDelay time.Duration
}

func NewRecorder(nav PageNavigator, cfg config.TimesheetConfig) *Recorder {
	return &Recorder{nav: nav, cfg: cfg, refreshDelay: gridRefreshDelay}
}

// Week navigates to the time tracking page, moves the grid to the week
// containing date, and returns the recorded entries.
func (r *Recorder) Week(ctx context.Context, date time.Time) (map[string]Entry, error) {
	page, err := r.openWeek(ctx, date)
	if err != nil {
		return nil, err
	}
	return ParseWeek(ctx, page)
}

// Record books hours of dayType on date. When the date already has an entry
// with an edit link, that entry is opened and overwritten instead of stacking
// a second one.
func (r *Recorder) Record(ctx context.Context, date time.Time, hours float64, dayType DayType) error {
	log.Printf("recording %.2f hours on %s as %s", hours, date.Format("02/01/2006"), dayType)

	page, err := r.openWeek(ctx, date)
	if err != nil {
		return err
	}

	entries, err := ParseWeek(ctx, page)
	if err != nil {
		return err
	}

	key := DateKey(date)
	if existing, ok := entries[key]; ok && existing.LinkSelector != "" {
		log.Printf("existing entry for %s (%s); editing it", key, existing.Clock)
		if err := page.Click(ctx, browser.BySelector(existing.LinkSelector)); err != nil {
			return fmt.Errorf("open existing entry %s: %w", key, err)
		}
	}

	if err := r.fillHours(ctx, page, hours); err != nil {
		return err
	}
	if err := r.selectCustomerAndCase(ctx, page, dayType); err != nil {
		return err
	}

	log.Printf("recorded %s", key)
	return nil
}

func (r *Recorder) openWeek(ctx context.Context, date time.Time) (browser.Page, error) {
	page, err := r.nav.Goto(ctx, navigator.StateTimeTracking)
	if err != nil {
		return nil, err
	}

	if err := page.Fill(ctx, browser.ByRole("textbox", "Date *"), date.Format("02/01/2006")); err != nil {
		return nil, fmt.Errorf("fill date field: %w", err)
	}
	if err := sleepWithContext(ctx, r.refreshDelay); err != nil {
		return nil, err
	}
	return page, nil
}

// fillHours opens the time entry popup via the Calculate link and fills the
// start/end clock range. Tab after each field commits the value; the page
// recomputes the duration on blur.
func (r *Recorder) fillHours(ctx context.Context, page browser.Page, hours float64) error {
	startHour, startMinute := r.cfg.WorkdayStartClock()
	start, end := HoursToRange(startHour, startMinute, hours)

	popup, err := page.ExpectPopup(ctx, func() error {
		return page.Click(ctx, browser.ByRole("link", "Calculate"))
	})
	if err != nil {
		return fmt.Errorf("open time entry popup: %w", err)
	}

	if err := popup.Fill(ctx, browser.ByRole("textbox", "Start Time"), start); err != nil {
		return err
	}
	if err := popup.Press(ctx, browser.ByRole("textbox", "Start Time"), "Tab"); err != nil {
		return err
	}
	if err := popup.Fill(ctx, browser.ByRole("textbox", "End Time"), end); err != nil {
		return err
	}
	if err := popup.Press(ctx, browser.ByRole("textbox", "End Time"), "Tab"); err != nil {
		return err
	}
	log.Printf("filled time range %s - %s (%.2f hours)", start, end, hours)

	if err := popup.Click(ctx, browser.ByRole("button", "Save")); err != nil {
		return err
	}
	return popup.Close()
}

// selectCustomerAndCase picks the customer/project and case/task for the
// entry. Work days book against the configured project and task; other day
// types book against the internal customer with a day-type case.
func (r *Recorder) selectCustomerAndCase(ctx context.Context, page browser.Page, dayType DayType) error {
	if err := page.Click(ctx, browser.BySelector("#parent_actionbuttons_customer_fs span")); err != nil {
		return err
	}
	if err := page.Click(ctx, browser.BySelector("#customer_popup_list")); err != nil {
		return err
	}

	customer := r.cfg.ProjectLink
	if dayType != DayWork {
		customer = r.cfg.InternalCustomerText
	}
	if err := page.Click(ctx, browser.Locator{Role: "link", Name: customer, Within: "#inner_popup_div"}); err != nil {
		return fmt.Errorf("select customer for %s: %w", dayType, err)
	}

	if err := page.Click(ctx, browser.BySelector("#parent_actionbuttons_casetaskevent_fs span")); err != nil {
		return err
	}
	if err := page.Click(ctx, browser.BySelector("#casetaskevent_popup_list")); err != nil {
		return err
	}

	caseText := r.cfg.TaskLink
	if dayType != DayWork {
		caseText = dayType.CaseText()
	}
	if caseText == "" {
		return fmt.Errorf("no case mapping for day type %s", dayType)
	}
	if err := page.Click(ctx, browser.ByRole("link", caseText)); err != nil {
		return fmt.Errorf("select case for %s: %w", dayType, err)
	}

	log.Printf("selected customer %q and case %q", customer, caseText)
	return nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
