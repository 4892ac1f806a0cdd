package navigator

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Scaled-down version of the wall-clock contract: a URL source that starts
// matching after a few polls completes promptly; one that never matches fails
// with a navigation timeout no more than one polling interval late.
func TestWaitForURLContains(t *testing.T) {
	drv := &fakeDriver{}
	page := drv.addPage("p", "about:blank")

	start := time.Now()
	page.mu.Lock()
	page.urlFn = func() string {
		if time.Since(start) > 30*time.Millisecond {
			return "https://example.com/x/ready"
		}
		return "https://example.com/pending"
	}
	page.mu.Unlock()

	w := Waiter{Poll: 10 * time.Millisecond}
	if err := w.WaitForURLContains(context.Background(), page, []string{"/ready"}, 300*time.Millisecond); err != nil {
		t.Fatalf("expected wait to complete, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("wait completed too slowly: %v", elapsed)
	}
}

func TestWaitForURLContainsTimesOut(t *testing.T) {
	drv := &fakeDriver{}
	page := drv.addPage("p", "https://example.com/never")

	w := Waiter{Poll: 10 * time.Millisecond}
	start := time.Now()
	err := w.WaitForURLContains(context.Background(), page, []string{"/ready"}, 100*time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrNavigationTimeout) {
		t.Fatalf("expected ErrNavigationTimeout, got %v", err)
	}
	if elapsed < 100*time.Millisecond {
		t.Errorf("timed out before the budget: %v", elapsed)
	}
	// Not more than one polling interval late, with scheduling slack.
	if elapsed > 200*time.Millisecond {
		t.Errorf("timed out too late: %v", elapsed)
	}
}

func TestWaitForURLGone(t *testing.T) {
	drv := &fakeDriver{}
	page := drv.addPage("p", "https://login.microsoftonline.com/authorize")

	start := time.Now()
	page.mu.Lock()
	page.urlFn = func() string {
		if time.Since(start) > 30*time.Millisecond {
			return "https://portal.example.com/home"
		}
		return "https://login.microsoftonline.com/authorize"
	}
	page.mu.Unlock()

	w := Waiter{Poll: 10 * time.Millisecond}
	if err := w.WaitForURLGone(context.Background(), page, []string{"login.microsoftonline.com"}, 300*time.Millisecond); err != nil {
		t.Fatalf("expected login wait to resolve, got %v", err)
	}
}

// A URL read that fails mid-navigation is transient: the waiter keeps polling
// and succeeds once reads recover and the URL matches.
func TestWaitRetriesTransientURLReadFailures(t *testing.T) {
	drv := &fakeDriver{}
	page := drv.addPage("p", "https://example.com/x/ready")
	page.mu.Lock()
	page.urlFailures = 3
	page.mu.Unlock()

	w := Waiter{Poll: 10 * time.Millisecond}
	if err := w.WaitForURLContains(context.Background(), page, []string{"/ready"}, 300*time.Millisecond); err != nil {
		t.Fatalf("expected wait to survive transient read failures, got %v", err)
	}

	page.mu.Lock()
	left := page.urlFailures
	page.mu.Unlock()
	if left != 0 {
		t.Errorf("expected all %d injected failures consumed, %d left", 3, left)
	}
}

// Reads that never recover exhaust the budget like a URL that never matches.
func TestWaitTimesOutWhenURLNeverReadable(t *testing.T) {
	drv := &fakeDriver{}
	page := drv.addPage("p", "https://example.com/x/ready")
	page.mu.Lock()
	page.urlFailures = 1 << 30
	page.mu.Unlock()

	w := Waiter{Poll: 10 * time.Millisecond}
	err := w.WaitForURLContains(context.Background(), page, []string{"/ready"}, 100*time.Millisecond)
	if !errors.Is(err, ErrNavigationTimeout) {
		t.Fatalf("expected ErrNavigationTimeout, got %v", err)
	}
}

func TestWaitCancelledByContext(t *testing.T) {
	drv := &fakeDriver{}
	page := drv.addPage("p", "https://example.com/never")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	w := Waiter{Poll: 10 * time.Millisecond}
	err := w.WaitForURLContains(ctx, page, []string{"/ready"}, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestWaiterDefaultInterval(t *testing.T) {
	var w Waiter
	if w.interval() != time.Second {
		t.Errorf("expected 1s default poll interval, got %v", w.interval())
	}
}
