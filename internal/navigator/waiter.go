package navigator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"timenav/internal/browser"
)

// ErrNavigationTimeout is returned when a wait exhausted its budget without
// the page's URL ever matching the expected evidence.
var ErrNavigationTimeout = errors.New("navigation timeout")

// Waiter polls a page's URL until a condition holds or a budget elapses. The
// URL is re-read on every poll because redirects outside our control can
// change it at any moment; a failed read counts as a transient condition, not
// a failure, until the budget runs out.
type Waiter struct {
	// Poll is the sampling interval. Zero means one second.
	Poll time.Duration
}

func (w Waiter) interval() time.Duration {
	if w.Poll <= 0 {
		return time.Second
	}
	return w.Poll
}

// WaitForURLContains blocks until the page URL contains any of patterns.
func (w Waiter) WaitForURLContains(ctx context.Context, page browser.Page, patterns []string, timeout time.Duration) error {
	return w.waitURL(ctx, page, timeout,
		fmt.Sprintf("url to contain one of %v", patterns),
		func(url string) bool {
			for _, p := range patterns {
				if p != "" && strings.Contains(url, p) {
					return true
				}
			}
			return false
		})
}

// WaitForURLGone blocks until the page URL no longer contains any of
// patterns. This is the login wait: completion is driven by a human
// finishing authentication in the open window.
func (w Waiter) WaitForURLGone(ctx context.Context, page browser.Page, patterns []string, timeout time.Duration) error {
	return w.waitURL(ctx, page, timeout,
		fmt.Sprintf("url to leave %v", patterns),
		func(url string) bool {
			for _, p := range patterns {
				if p != "" && strings.Contains(url, p) {
					return false
				}
			}
			return true
		})
}

func (w Waiter) waitURL(ctx context.Context, page browser.Page, timeout time.Duration, what string, match func(string) bool) error {
	deadline := time.Now().Add(timeout)
	lastURL := ""

	for {
		url, err := page.URL()
		if err != nil {
			// Mid-navigation reads fail transiently; keep polling.
			log.Printf("transient URL read failure while waiting for %s: %v", what, err)
		} else {
			lastURL = url
			if match(url) {
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("waiting for %s (last url %q): %w", what, lastURL, ErrNavigationTimeout)
		}
		if err := sleepWithContext(ctx, w.interval()); err != nil {
			return err
		}
	}
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
