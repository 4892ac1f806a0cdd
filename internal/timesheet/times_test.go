package timesheet

import (
	"testing"
	"time"
)

func TestClockToHours(t *testing.T) {
	cases := []struct {
		clock   string
		want    float64
		wantErr bool
	}{
		{"9:30", 9.5, false},
		{"8:00", 8, false},
		{"11:45", 11.75, false},
		{"0:00", 0, false},
		{"", 0, false},
		{"  9:30 ", 9.5, false},
		{"9:99", 0, true},
		{"nine:thirty", 0, true},
		{"9:3", 0, true},
	}

	for _, tc := range cases {
		got, err := ClockToHours(tc.clock)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ClockToHours(%q): expected error", tc.clock)
			}
			continue
		}
		if err != nil {
			t.Errorf("ClockToHours(%q): %v", tc.clock, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ClockToHours(%q) = %v, want %v", tc.clock, got, tc.want)
		}
	}
}

func TestHoursToRange(t *testing.T) {
	cases := []struct {
		hours      float64
		start, end string
	}{
		{9.5, "07:30", "17:00"},
		{8, "07:30", "15:30"},
		{0.25, "07:30", "07:45"},
		{11.5, "07:30", "19:00"},
	}

	for _, tc := range cases {
		start, end := HoursToRange(7, 30, tc.hours)
		if start != tc.start || end != tc.end {
			t.Errorf("HoursToRange(7, 30, %v) = (%s, %s), want (%s, %s)",
				tc.hours, start, end, tc.start, tc.end)
		}
	}

	start, end := HoursToRange(8, 0, 4.5)
	if start != "08:00" || end != "12:30" {
		t.Errorf("HoursToRange(8, 0, 4.5) = (%s, %s)", start, end)
	}
}

func TestDateKey(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), "wed_3"},
		{time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC), "sun_24"},
		{time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), "mon_1"},
	}
	for _, tc := range cases {
		if got := DateKey(tc.date); got != tc.want {
			t.Errorf("DateKey(%v) = %q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestParseDayType(t *testing.T) {
	for _, raw := range []string{"work", "sick", "vacation", "reserve_duty", "public_holiday"} {
		if _, err := ParseDayType(raw); err != nil {
			t.Errorf("ParseDayType(%q): %v", raw, err)
		}
	}
	if _, err := ParseDayType("holiday"); err == nil {
		t.Error("expected error for unknown day type")
	}
}

func TestCaseText(t *testing.T) {
	if got := DayWork.CaseText(); got != "" {
		t.Errorf("work day should have no case text, got %q", got)
	}
	if got := DayVacation.CaseText(); got != "Vacation (Project Task)" {
		t.Errorf("unexpected vacation case text %q", got)
	}
	if got := DayChildSick.CaseText(); got != "Child (Dependent) Sickness (Project Task)" {
		t.Errorf("unexpected child sick case text %q", got)
	}
}
