package timesheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ClockToHours converts a grid cell time like "9:30" to decimal hours (9.5).
// Empty and zero entries are zero hours, not errors.
func ClockToHours(clock string) (float64, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" || clock == "0:00" {
		return 0, nil
	}
	m := clockPattern.FindStringSubmatch(clock)
	if m == nil {
		return 0, fmt.Errorf("malformed clock value %q", clock)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if minutes >= 60 {
		return 0, fmt.Errorf("malformed clock value %q", clock)
	}
	return float64(hours) + float64(minutes)/60, nil
}

// HoursToRange turns a duration in decimal hours into the start/end clock
// strings the entry popup expects, anchored at the configured workday start.
func HoursToRange(startHour, startMinute int, total float64) (start, end string) {
	endTotalMinutes := startMinute + int(total*60)
	endHour := startHour + endTotalMinutes/60
	endMinute := endTotalMinutes % 60

	start = fmt.Sprintf("%02d:%02d", startHour, startMinute)
	end = fmt.Sprintf("%02d:%02d", endHour, endMinute)
	return start, end
}

// DateKey computes the grid column key for a date, e.g. "sun_24" for Sunday
// the 24th. Must mirror how the grid headers are normalized in ParseWeek.
func DateKey(date time.Time) string {
	return fmt.Sprintf("%s_%d", strings.ToLower(date.Format("Mon")), date.Day())
}
