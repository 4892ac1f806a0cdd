package navigator

import "strings"

// PageState identifies which screen of the portal/ERP flow the active page is
// showing. It is computed fresh from the URL on every read and never cached:
// the underlying page can navigate at any time.
type PageState string

const (
	StateLogin        PageState = "login"
	StatePortalHome   PageState = "portal_home"
	StateAppHome      PageState = "app_home"
	StateTimeTracking PageState = "time_tracking"
	StateWeeklySheet  PageState = "weekly_sheet"
	StateUnknown      PageState = "unknown"
)

// PatternRule binds a state to the URL substrings that evidence it.
type PatternRule struct {
	State    PageState
	Patterns []string
}

// PatternTable is an ordered classification table: the first rule with a
// matching pattern wins, so precedence lives in the data, not in branching.
type PatternTable []PatternRule

// DefaultPatterns returns the URL evidence for the target tenant. Login comes
// first so an auth redirect carrying app URLs in its query string still
// classifies as login.
func DefaultPatterns() PatternTable {
	return PatternTable{
		{StateLogin, []string{"login.microsoftonline.com"}},
		{StatePortalHome, []string{"ibase1.sharepoint.com/sites/hub/il"}},
		{StateAppHome, []string{"app.netsuite.com/app/center/card"}},
		{StateTimeTracking, []string{"app.netsuite.com/app/accounting/transactions/timebill"}},
		{StateWeeklySheet, []string{"app.netsuite.com/app/accounting/transactions/time/weeklytimebill"}},
	}
}

// Classify maps a URL to a page state. Deterministic and total: rules are
// checked in table order and the first substring match wins; URLs matching
// nothing are StateUnknown, never an error.
func (t PatternTable) Classify(url string) PageState {
	for _, rule := range t {
		for _, pattern := range rule.Patterns {
			if pattern != "" && strings.Contains(url, pattern) {
				return rule.State
			}
		}
	}
	return StateUnknown
}

// PatternsFor returns the URL substrings that evidence state, or nil for
// states without URL evidence (unknown).
func (t PatternTable) PatternsFor(state PageState) []string {
	for _, rule := range t {
		if rule.State == state {
			return rule.Patterns
		}
	}
	return nil
}

