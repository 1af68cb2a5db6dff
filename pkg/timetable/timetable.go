// Package timetable defines the persisted shapes behind the schedule: the
// stream catalog, weekly template slots, and attendance records.
package timetable

import (
	"encoding/json"

	"tableflip.dev/rollcall/pkg/schedule"
)

// Stream is one class group whose timetable and attendance are tracked
// together, e.g. "CS Year 2, Section A".
type Stream struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// MarshalStreams and UnmarshalStreams round-trip the stream catalog index.
func MarshalStreams(list []Stream) ([]byte, error) {
	return json.MarshalIndent(list, "", "  ")
}

func UnmarshalStreams(data []byte) ([]Stream, error) {
	var list []Stream
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Slot is one line of a stream's weekly template: subject S meets on weekday
// D at this time, every week. Slots are expanded into schedule entries per
// concrete date by the week generator.
type Slot struct {
	ID          string `json:"id,omitempty"`
	StreamID    string `json:"streamId"`
	DayOfWeek   int    `json:"dayOfWeek"` // 1=Mon..7=Sun
	SubjectName string `json:"subjectName"`
	CourseCode  string `json:"courseCode,omitempty"`
	StartTime   string `json:"startTime,omitempty"` // local HH:MM
	EndTime     string `json:"endTime,omitempty"`
}

// Record is one persisted attendance fact. A record either overlays a
// generated occurrence (mark or cancel, matched by date, subject and subject
// index) or creates an occurrence of its own (replacement or ad-hoc added
// class).
type Record struct {
	ID           string          `json:"id,omitempty"`
	StreamID     string          `json:"streamId"`
	Date         schedule.Date   `json:"date"`
	SubjectName  string          `json:"subjectName"`
	SubjectIndex int             `json:"subjectIndex"`
	Status       schedule.Status `json:"status"`
	CourseCode   string          `json:"courseCode,omitempty"`
	StartTime    string          `json:"startTime,omitempty"`
	EndTime      string          `json:"endTime,omitempty"`

	IsGloballyCancelled bool   `json:"isGloballyCancelled,omitempty"`
	IsReplacement       bool   `json:"isReplacement,omitempty"`
	OriginalSubjectName string `json:"originalSubjectName,omitempty"`
	IsAdded             bool   `json:"isAdded,omitempty"`
}

// CreatesEntry reports whether the record introduces an occurrence of its own
// rather than overlaying a generated one.
func (r *Record) CreatesEntry() bool {
	return r != nil && (r.IsReplacement || r.IsAdded)
}

// Entry projects the record into a schedule entry. Only meaningful for
// entry-creating records; overlay records patch generated entries instead.
func (r *Record) Entry() *schedule.Entry {
	if r == nil {
		return nil
	}
	return &schedule.Entry{
		Date:                r.Date,
		DayOfWeek:           r.Date.DayOfWeek(),
		SubjectName:         r.SubjectName,
		CourseCode:          r.CourseCode,
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		Status:              r.Status,
		RecordID:            r.ID,
		IsReplacement:       r.IsReplacement,
		OriginalSubjectName: r.OriginalSubjectName,
		IsGloballyCancelled: r.IsGloballyCancelled,
		IsAdded:             r.IsAdded,
		SubjectIndex:        r.SubjectIndex,
	}
}
