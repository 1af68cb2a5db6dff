package timeutil

import (
	"testing"
	"time"
)

func TestWeekOf(t *testing.T) {
	// 2024-01-10 is a Wednesday.
	wed := time.Date(2024, 1, 10, 15, 30, 0, 0, time.Local)
	start, end := WeekOf(wed)
	if start.ISO() != "2024-01-08" {
		t.Fatalf("week start = %s, want 2024-01-08", start.ISO())
	}
	if end.ISO() != "2024-01-14" {
		t.Fatalf("week end = %s, want 2024-01-14", end.ISO())
	}
}

func TestWeekOfSunday(t *testing.T) {
	sun := time.Date(2024, 1, 14, 8, 0, 0, 0, time.Local)
	start, _ := WeekOf(sun)
	if start.ISO() != "2024-01-08" {
		t.Fatalf("sunday must belong to the preceding monday's week, got %s", start.ISO())
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"9:00":  "09:00",
		"09:05": "09:05",
		"23:59": "23:59",
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseClock(%q) = %q, want %q", in, got, want)
		}
	}
	for _, bad := range []string{"24:00", "9", "9:5", "12:60", "noon"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) should fail", bad)
		}
	}
}

func TestParseDayOfWeek(t *testing.T) {
	for in, want := range map[string]int{"1": 1, "7": 7, "mon": 1, "Friday": 5, "SUN": 7} {
		got, err := ParseDayOfWeek(in)
		if err != nil {
			t.Fatalf("ParseDayOfWeek(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseDayOfWeek(%q) = %d, want %d", in, got, want)
		}
	}
	if _, err := ParseDayOfWeek("0"); err == nil {
		t.Fatalf("expected error for 0")
	}
	if _, err := ParseDayOfWeek("someday"); err == nil {
		t.Fatalf("expected error for unknown day")
	}
}
