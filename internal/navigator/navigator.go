package navigator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"timenav/internal/browser"
	"timenav/internal/config"
)

// ErrUnreachableTransition is returned when no edge exists for a requested
// (from, to) pair, e.g. asking to navigate *to* the login page, or needing a
// portal handle that was never seen in this session.
var ErrUnreachableTransition = errors.New("unreachable transition")

// maxHops bounds one Goto call. The longest legal journey is
// unknown -> login -> portal -> app home -> subpage; anything longer means
// the page is bouncing between states and we should fail instead of spinning.
const maxHops = 8

// Navigator models the portal/ERP flow as a hub-and-spoke state graph and
// drives the browser along it. The app home screen is the hub: every
// multi-hop journey decomposes into single hops through it, so the edge set
// stays linear in the number of states.
//
// The portal/app page references are opportunistic caches refreshed as a side
// effect of classification. They may be stale or absent at any time; the live
// page list from the driver is the only source of truth. Not safe for
// concurrent use: one Goto at a time per session.
type Navigator struct {
	drv      browser.Driver
	portal   config.PortalConfig
	timeouts config.TimeoutConfig
	patterns PatternTable
	waiter   Waiter

	portalPage browser.Page
	appPage    browser.Page
	current    browser.Page
}

func New(drv browser.Driver, cfg config.Config) *Navigator {
	return &Navigator{
		drv:      drv,
		portal:   cfg.Portal,
		timeouts: cfg.Timeouts,
		patterns: DefaultPatterns(),
		waiter:   Waiter{Poll: cfg.Timeouts.PollDuration()},
	}
}

// CurrentPage returns the handle the navigator last considered active. May be
// nil before the first observation.
func (n *Navigator) CurrentPage() browser.Page { return n.current }

// AppPage returns the cached handle of the ERP tab, nil if never seen.
func (n *Navigator) AppPage() browser.Page { return n.appPage }

// Observe re-derives the active page from the live page list, classifies its
// URL, and refreshes the portal/app references when the state identifies the
// tab. Returns the state and the URL it was read from.
func (n *Navigator) Observe() (PageState, string, error) {
	pages, err := n.drv.Pages()
	if err != nil {
		return StateUnknown, "", fmt.Errorf("list open pages: %w", err)
	}
	if len(pages) == 0 {
		n.current = nil
		return StateUnknown, "", nil
	}

	active := pages[len(pages)-1]
	n.current = active

	url, err := active.URL()
	if err != nil {
		return StateUnknown, "", fmt.Errorf("read active page url: %w", err)
	}

	state := n.patterns.Classify(url)
	switch state {
	case StateLogin, StatePortalHome:
		n.portalPage = active
	case StateAppHome, StateTimeTracking, StateWeeklySheet:
		n.appPage = active
	}
	return state, url, nil
}

// Goto drives the browser to the target state, hopping through the app home
// hub as needed. It returns the page handle showing the target. A failed hop
// aborts the whole journey; the browser is left in whatever state it reached.
func (n *Navigator) Goto(ctx context.Context, target PageState) (browser.Page, error) {
	switch target {
	case StatePortalHome, StateAppHome, StateTimeTracking, StateWeeklySheet:
	default:
		return nil, fmt.Errorf("cannot navigate to %s: %w", target, ErrUnreachableTransition)
	}

	for hop := 0; hop < maxHops; hop++ {
		state, url, err := n.Observe()
		if err != nil {
			return nil, err
		}
		if state == target {
			if hop == 0 {
				log.Printf("already on target page %s", target)
			} else {
				log.Printf("reached %s after %d hop(s)", target, hop)
			}
			return n.current, nil
		}

		log.Printf("navigating %s -> %s (at %q)", state, target, url)
		if err := n.step(ctx, state, target); err != nil {
			log.Printf("hop %s -> %s failed at %q: %v", state, target, url, err)
			return nil, fmt.Errorf("goto %s from %s: %w", target, state, err)
		}
	}

	return nil, fmt.Errorf("goto %s: hop budget exhausted: %w", target, ErrUnreachableTransition)
}

// step performs exactly one hop toward target from the given state. The
// caller's loop re-observes after every hop, so steps only need to make
// progress, not arrive.
func (n *Navigator) step(ctx context.Context, from, target PageState) error {
	switch from {
	case StateUnknown:
		return n.resolveUnknown(ctx)
	case StateLogin:
		return n.awaitLogin(ctx)
	case StatePortalHome:
		return n.launchApp(ctx)
	case StateAppHome:
		return n.stepFromAppHome(ctx, target)
	case StateTimeTracking, StateWeeklySheet:
		return n.stepFromSubpage(ctx, target)
	}
	return fmt.Errorf("no edge from %s: %w", from, ErrUnreachableTransition)
}

// resolveUnknown forces the session into a classifiable state by opening the
// portal entry URL on an existing page (or a fresh one when nothing is open)
// and waiting until it evidences either the portal or its login redirect.
func (n *Navigator) resolveUnknown(ctx context.Context) error {
	pages, err := n.drv.Pages()
	if err != nil {
		return fmt.Errorf("list open pages: %w", err)
	}

	var page browser.Page
	if len(pages) == 0 {
		page, err = n.drv.OpenPage()
		if err != nil {
			return fmt.Errorf("open page for portal: %w", err)
		}
	} else {
		page = pages[0]
	}
	n.current = page

	log.Printf("unknown state; opening portal %s", n.portal.HomeURL)
	if err := page.Navigate(n.portal.HomeURL); err != nil {
		return err
	}

	expected := append(append([]string{}, n.patterns.PatternsFor(StatePortalHome)...),
		n.patterns.PatternsFor(StateLogin)...)
	return n.waiter.WaitForURLContains(ctx, page, expected, n.timeouts.NavigationTimeout())
}

// awaitLogin blocks until a human finishes authenticating and the URL leaves
// the login domain. The budget is deliberately long; progress depends on an
// out-of-band action. The loop reclassifies afterwards and continues from
// whatever state the fresh read reports.
func (n *Navigator) awaitLogin(ctx context.Context) error {
	log.Printf("on login page; waiting up to %v for user to authenticate", n.timeouts.LoginTimeout())
	return n.waiter.WaitForURLGone(ctx, n.current, n.patterns.PatternsFor(StateLogin), n.timeouts.LoginTimeout())
}

// launchApp opens the ERP from the portal: app launcher, search, then the app
// entry, which opens the ERP in a new tab we adopt as the app page.
func (n *Navigator) launchApp(ctx context.Context) error {
	portal := n.portalPage
	if portal == nil {
		return fmt.Errorf("portal page reference lost: %w", ErrUnreachableTransition)
	}

	if err := portal.Click(ctx, browser.ByRole("button", n.portal.AppLauncherName)); err != nil {
		return err
	}
	if err := portal.Click(ctx, browser.ByRole("searchbox", n.portal.SearchBoxName)); err != nil {
		return err
	}
	if err := portal.Fill(ctx, browser.ByRole("searchbox", n.portal.SearchFillName), n.portal.AppSearchText); err != nil {
		return err
	}

	popup, err := portal.ExpectPopup(ctx, func() error {
		return portal.Click(ctx, browser.Locator{Role: "listitem", Name: n.portal.AppEntryName, Exact: true})
	})
	if err != nil {
		return fmt.Errorf("launch app from portal: %w", err)
	}

	n.appPage = popup
	n.current = popup
	return n.waiter.WaitForURLContains(ctx, popup, n.patterns.PatternsFor(StateAppHome), n.timeouts.NavigationTimeout())
}

func (n *Navigator) stepFromAppHome(ctx context.Context, target PageState) error {
	switch target {
	case StateTimeTracking:
		return n.clickAppLink(ctx, n.portal.TrackTimeLink, StateTimeTracking)
	case StateWeeklySheet:
		return n.clickAppLink(ctx, n.portal.WeeklySheetLink, StateWeeklySheet)
	case StatePortalHome:
		return n.frontPortal()
	}
	return fmt.Errorf("no edge app_home -> %s: %w", target, ErrUnreachableTransition)
}

func (n *Navigator) stepFromSubpage(ctx context.Context, target PageState) error {
	switch target {
	case StatePortalHome:
		return n.frontPortal()
	case StateAppHome, StateTimeTracking, StateWeeklySheet:
		// Route through the hub; the next iteration takes the final hop.
		return n.clickAppLink(ctx, n.portal.HomeLink, StateAppHome)
	}
	return fmt.Errorf("no edge to %s: %w", target, ErrUnreachableTransition)
}

// clickAppLink clicks a named navigation link on the ERP tab and waits for
// the destination's URL evidence.
func (n *Navigator) clickAppLink(ctx context.Context, linkName string, dest PageState) error {
	page := n.appPage
	if page == nil {
		page = n.current
	}
	if page == nil {
		return fmt.Errorf("app page reference lost: %w", ErrUnreachableTransition)
	}

	if err := page.Click(ctx, browser.ByRole("link", linkName)); err != nil {
		return err
	}
	n.current = page
	return n.waiter.WaitForURLContains(ctx, page, n.patterns.PatternsFor(dest), n.timeouts.NavigationTimeout())
}

// frontPortal brings the cached portal tab back to the foreground. No
// navigation happens; the tab is expected to still show the portal.
func (n *Navigator) frontPortal() error {
	if n.portalPage == nil {
		return fmt.Errorf("portal page reference lost: %w", ErrUnreachableTransition)
	}
	if err := n.portalPage.BringToFront(); err != nil {
		return err
	}
	n.current = n.portalPage
	return nil
}
