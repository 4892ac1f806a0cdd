package navigator

import "testing"

func TestClassifyKnownStates(t *testing.T) {
	table := DefaultPatterns()

	cases := []struct {
		url  string
		want PageState
	}{
		{"https://login.microsoftonline.com/common/oauth2/authorize?client_id=x", StateLogin},
		{"https://ibase1.sharepoint.com/sites/hub/il", StatePortalHome},
		{"https://ibase1.sharepoint.com/sites/hub/il/SitePages/Home.aspx", StatePortalHome},
		{"https://app.netsuite.com/app/center/card.nl?sc=-29", StateAppHome},
		{"https://app.netsuite.com/app/accounting/transactions/timebill.nl", StateTimeTracking},
		{"https://app.netsuite.com/app/accounting/transactions/time/weeklytimebill.nl", StateWeeklySheet},
	}

	for _, tc := range cases {
		if got := table.Classify(tc.url); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.url, got, tc.want)
		}
	}
}

func TestClassifyUnknownFallback(t *testing.T) {
	table := DefaultPatterns()

	for _, url := range []string{
		"",
		"about:blank",
		"https://example.com/",
		"https://app.netsuite.com/app/common/entity/employee.nl",
	} {
		if got := table.Classify(url); got != StateUnknown {
			t.Errorf("Classify(%q) = %s, want unknown", url, got)
		}
	}
}

// A URL that textually matches several rules must classify by table order,
// with login taking precedence over everything app-side.
func TestClassifyPrecedence(t *testing.T) {
	table := DefaultPatterns()

	url := "https://login.microsoftonline.com/redirect?next=https://app.netsuite.com/app/center/card.nl"
	if got := table.Classify(url); got != StateLogin {
		t.Errorf("Classify(%q) = %s, want login to win by precedence", url, got)
	}

	custom := PatternTable{
		{StateAppHome, []string{"app/center"}},
		{StateTimeTracking, []string{"app/center/card"}},
	}
	if got := custom.Classify("https://x/app/center/card"); got != StateAppHome {
		t.Errorf("expected first rule to win, got %s", got)
	}
}

func TestPatternsFor(t *testing.T) {
	table := DefaultPatterns()
	if got := table.PatternsFor(StateWeeklySheet); len(got) == 0 {
		t.Error("expected weekly sheet patterns")
	}
	if got := table.PatternsFor(StateUnknown); got != nil {
		t.Errorf("expected nil patterns for unknown, got %v", got)
	}
}
