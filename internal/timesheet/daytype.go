package timesheet

import "fmt"

// DayType categorizes what a day's hours are booked against. Work days go to
// the configured project; everything else goes to the internal customer with
// a day-type specific case.
type DayType string

const (
	DayWork          DayType = "work"
	DaySick          DayType = "sick"
	DayChildSick     DayType = "child_sick"
	DayParentSick    DayType = "parent_sick"
	DaySpouseSick    DayType = "spouse_sick"
	DayPublicHoliday DayType = "public_holiday"
	DayReserveDuty   DayType = "reserve_duty"
	DayVacation      DayType = "vacation"
)

// caseTexts are the case/task popup entries for non-work day types, as the
// ERP labels them.
var caseTexts = map[DayType]string{
	DaySick:          "Sickness (Project Task)",
	DayChildSick:     "Child (Dependent) Sickness (Project Task)",
	DayParentSick:    "Parent (dependent) Sickness (Project Task)",
	DaySpouseSick:    "Spouse (Project Task)",
	DayPublicHoliday: "Public Holiday (Project Task)",
	DayReserveDuty:   "Reserve Duty (Project Task)",
	DayVacation:      "Vacation (Project Task)",
}

// ParseDayType converts a user-supplied string into a DayType.
func ParseDayType(raw string) (DayType, error) {
	d := DayType(raw)
	if d == DayWork {
		return d, nil
	}
	if _, ok := caseTexts[d]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown day type %q", raw)
}

// CaseText returns the case link text for non-work day types, empty for work
// (work uses the configured task link instead).
func (d DayType) CaseText() string {
	return caseTexts[d]
}
