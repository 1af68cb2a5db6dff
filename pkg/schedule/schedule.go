// Package schedule holds the timetable occurrence model and the identity
// machinery (index assignment, position resolution, mutation keys) shared by
// the cache, the CLI and the TUI.
package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status describes the attendance state of one occurrence.
type Status string

const (
	StatusOccurred  Status = "occurred"
	StatusMissed    Status = "missed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOccurred, StatusMissed, StatusCancelled:
		return true
	}
	return false
}

const layoutISO = "2006-01-02"

// ParseDate parses an ISO calendar date (2006-01-02) in local time.
func ParseDate(v string) (Date, error) {
	t, err := time.ParseInLocation(layoutISO, v, time.Local)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)}
}

// Date is a calendar date. The time-of-day portion is always zero.
type Date struct {
	time.Time
}

func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(layoutISO)
}

// Same reports whether both dates name the same calendar day.
func (d Date) Same(then Date) bool {
	return d.Year() == then.Year() && d.Month() == then.Month() && d.Day() == then.Day()
}

// DayOfWeek returns the ISO weekday, 1=Monday through 7=Sunday.
func (d Date) DayOfWeek() int {
	wd := int(d.Time.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Next returns the date n days later.
func (d Date) Next(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", d.ISO())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Entry is one occurrence of a subject on a date. Entries are produced
// wholesale by the week generator, decorated with a SubjectIndex, optionally
// patched optimistically, and discarded entirely on the next fetch — no entry
// survives a refetch by identity.
type Entry struct {
	Date        Date   `json:"date"`
	DayOfWeek   int    `json:"dayOfWeek"` // 1=Mon..7=Sun
	SubjectName string `json:"subjectName"`
	CourseCode  string `json:"courseCode,omitempty"`
	StartTime   string `json:"startTime,omitempty"` // local HH:MM, empty when untimed
	EndTime     string `json:"endTime,omitempty"`
	Status      Status `json:"status"`

	// RecordID is set once a persisted attendance record backs this
	// occurrence. When present it is authoritative identity and overrides
	// positional matching.
	RecordID string `json:"recordId,omitempty"`

	IsReplacement       bool   `json:"isReplacement,omitempty"`
	OriginalSubjectName string `json:"originalSubjectName,omitempty"`
	IsGloballyCancelled bool   `json:"isGloballyCancelled,omitempty"`
	IsAdded             bool   `json:"isAdded,omitempty"`

	// SubjectIndex disambiguates same-day same-subject occurrences. It is
	// attached by AssignIndexes, never intrinsic to the entry.
	SubjectIndex int `json:"subjectIndex"`
}

// Clone returns an independent copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

// CloneView deep-copies a weekly view so snapshots never alias live entries.
func CloneView(view []*Entry) []*Entry {
	if view == nil {
		return nil
	}
	out := make([]*Entry, len(view))
	for i, e := range view {
		out[i] = e.Clone()
	}
	return out
}

// GroupByDay splits a view into per-date groups, preserving view order within
// each group and ordering groups by date ascending.
func GroupByDay(view []*Entry) [][]*Entry {
	groups := make([][]*Entry, 0, 7)
	byDay := make(map[string]int)
	for _, e := range view {
		if e == nil {
			continue
		}
		key := e.Date.ISO()
		idx, ok := byDay[key]
		if !ok {
			// Insert keeping days sorted.
			idx = len(groups)
			for i, g := range groups {
				if e.Date.Before(g[0].Date.Time) && !e.Date.Same(g[0].Date) {
					idx = i
					break
				}
			}
			groups = append(groups, nil)
			copy(groups[idx+1:], groups[idx:])
			groups[idx] = nil
			for k, v := range byDay {
				if v >= idx {
					byDay[k] = v + 1
				}
			}
			byDay[key] = idx
		}
		groups[idx] = append(groups[idx], e)
	}
	return groups
}
