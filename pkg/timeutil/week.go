// Package timeutil holds small date helpers shared by the CLI and TUI.
package timeutil

import (
	"fmt"
	"regexp"
	"time"

	"tableflip.dev/rollcall/pkg/schedule"
)

// WeekOf returns the Monday..Sunday week containing t.
func WeekOf(t time.Time) (schedule.Date, schedule.Date) {
	day := schedule.DateOf(t)
	start := day.Next(1 - day.DayOfWeek())
	return start, start.Next(6)
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseClock validates an HH:MM string and normalizes it to two-digit hours
// so lexical comparison matches chronological order. Empty input stays empty:
// it means "no time".
func ParseClock(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	m := clockPattern.FindStringSubmatch(v)
	if m == nil {
		return "", fmt.Errorf("invalid time %q, want HH:MM", v)
	}
	var hh, mm int
	fmt.Sscanf(m[1], "%d", &hh)
	fmt.Sscanf(m[2], "%d", &mm)
	if hh > 23 || mm > 59 {
		return "", fmt.Errorf("invalid time %q", v)
	}
	return fmt.Sprintf("%02d:%02d", hh, mm), nil
}

var dayAliases = map[string]int{
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

// ParseDayOfWeek accepts "1".."7", day names, or three-letter abbreviations
// and returns the ISO weekday.
func ParseDayOfWeek(v string) (int, error) {
	if len(v) == 1 && v[0] >= '1' && v[0] <= '7' {
		return int(v[0] - '0'), nil
	}
	lower := ""
	for _, r := range v {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		lower += string(r)
	}
	if d, ok := dayAliases[lower]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("invalid day of week %q", v)
}

// DayName returns the short English name for an ISO weekday.
func DayName(dow int) string {
	names := [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if dow < 1 || dow > 7 {
		return "?"
	}
	return names[dow-1]
}
