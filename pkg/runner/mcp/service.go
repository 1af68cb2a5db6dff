// Package mcp provides the Model Context Protocol server integration for
// rollcall.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/glyph"
	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/store"
	"tableflip.dev/rollcall/pkg/timeutil"
)

// Service coordinates persistence-backed operations shared by the MCP server.
type Service struct {
	App *app.Service
}

// NewService builds a service wrapper using the provided persistence layer.
func NewService(p store.Persistence) *Service {
	return &Service{App: &app.Service{Persistence: p}}
}

// StreamSummary describes one stream and basic aggregate metadata.
type StreamSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	SlotCount int    `json:"slotCount"`
}

// SlotDTO is a transport-friendly projection of a weekly template line.
type SlotDTO struct {
	ID          string `json:"id"`
	DayOfWeek   int    `json:"dayOfWeek"`
	DayName     string `json:"dayName"`
	SubjectName string `json:"subjectName"`
	CourseCode  string `json:"courseCode,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
}

// EntryDTO is a transport-friendly projection of one schedule occurrence.
type EntryDTO struct {
	Date                string `json:"date"`
	DayOfWeek           int    `json:"dayOfWeek"`
	DayName             string `json:"dayName"`
	SubjectName         string `json:"subjectName"`
	SubjectIndex        int    `json:"subjectIndex"`
	CourseCode          string `json:"courseCode,omitempty"`
	StartTime           string `json:"startTime,omitempty"`
	EndTime             string `json:"endTime,omitempty"`
	Status              string `json:"status"`
	StatusSymbol        string `json:"statusSymbol"`
	RecordID            string `json:"recordId,omitempty"`
	IsReplacement       bool   `json:"isReplacement,omitempty"`
	OriginalSubjectName string `json:"originalSubjectName,omitempty"`
	IsGloballyCancelled bool   `json:"isGloballyCancelled,omitempty"`
	IsAdded             bool   `json:"isAdded,omitempty"`
	MutationKey         string `json:"mutationKey"`
}

func entryDTO(e *schedule.Entry) EntryDTO {
	return EntryDTO{
		Date:                e.Date.ISO(),
		DayOfWeek:           e.DayOfWeek,
		DayName:             timeutil.DayName(e.DayOfWeek),
		SubjectName:         e.SubjectName,
		SubjectIndex:        e.SubjectIndex,
		CourseCode:          e.CourseCode,
		StartTime:           e.StartTime,
		EndTime:             e.EndTime,
		Status:              string(e.Status),
		StatusSymbol:        glyph.ForStatus(e.Status),
		RecordID:            e.RecordID,
		IsReplacement:       e.IsReplacement,
		OriginalSubjectName: e.OriginalSubjectName,
		IsGloballyCancelled: e.IsGloballyCancelled,
		IsAdded:             e.IsAdded,
		MutationKey:         schedule.MutationKey(e),
	}
}

// ListStreams returns summaries for every stream in the catalog.
func (s *Service) ListStreams(ctx context.Context) ([]StreamSummary, error) {
	streams, err := s.App.Streams(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]StreamSummary, 0, len(streams))
	for _, st := range streams {
		slots, err := s.App.Slots(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, StreamSummary{
			ID:        st.ID,
			Name:      st.Name,
			SlotCount: len(slots),
		})
	}
	return summaries, nil
}

// ListSlots returns the weekly template for a stream.
func (s *Service) ListSlots(ctx context.Context, streamID string) ([]SlotDTO, error) {
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, errors.New("stream id is required")
	}
	slots, err := s.App.Slots(ctx, streamID)
	if err != nil {
		return nil, err
	}
	out := make([]SlotDTO, 0, len(slots))
	for _, sl := range slots {
		out = append(out, SlotDTO{
			ID:          sl.ID,
			DayOfWeek:   sl.DayOfWeek,
			DayName:     timeutil.DayName(sl.DayOfWeek),
			SubjectName: sl.SubjectName,
			CourseCode:  sl.CourseCode,
			StartTime:   sl.StartTime,
			EndTime:     sl.EndTime,
		})
	}
	return out, nil
}

// GetWeek builds the indexed weekly view containing the given date.
func (s *Service) GetWeek(ctx context.Context, streamID, dateISO string) ([]EntryDTO, string, string, error) {
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, "", "", errors.New("stream id is required")
	}
	day, err := parseDateArg(dateISO)
	if err != nil {
		return nil, "", "", err
	}
	start, end := timeutil.WeekOf(day.Time)
	view, err := s.App.Week(ctx, streamID, start, end)
	if err != nil {
		return nil, "", "", err
	}
	out := make([]EntryDTO, 0, len(view))
	for _, e := range view {
		out = append(out, entryDTO(e))
	}
	return out, start.ISO(), end.ISO(), nil
}

// MarkAttendance sets the attendance status for one occurrence.
func (s *Service) MarkAttendance(ctx context.Context, streamID, dateISO, subject string, index int, status string) (EntryDTO, error) {
	target, err := buildTarget(dateISO, subject, index)
	if err != nil {
		return EntryDTO{}, err
	}
	st := schedule.Status(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return EntryDTO{}, fmt.Errorf("invalid status %q, want occurred, missed, or cancelled", status)
	}
	r, err := s.App.Mark(ctx, streamID, target, st)
	if err != nil {
		return EntryDTO{}, err
	}
	return entryDTO(r.Entry()), nil
}

// CancelClass overlays cancellation on one occurrence.
func (s *Service) CancelClass(ctx context.Context, streamID, dateISO, subject string, index int) (EntryDTO, error) {
	target, err := buildTarget(dateISO, subject, index)
	if err != nil {
		return EntryDTO{}, err
	}
	r, err := s.App.Cancel(ctx, streamID, target)
	if err != nil {
		return EntryDTO{}, err
	}
	return entryDTO(r.Entry()), nil
}

// ReplaceClass cancels one occurrence and creates its replacement.
func (s *Service) ReplaceClass(ctx context.Context, streamID, dateISO, subject string, index int, with, courseCode, startTime, endTime string) (EntryDTO, error) {
	target, err := buildTarget(dateISO, subject, index)
	if err != nil {
		return EntryDTO{}, err
	}
	if strings.TrimSpace(with) == "" {
		return EntryDTO{}, errors.New("replacement subject is required")
	}
	r, err := s.App.Replace(ctx, streamID, target, app.Replacement{
		SubjectName: with,
		CourseCode:  courseCode,
		StartTime:   startTime,
		EndTime:     endTime,
	})
	if err != nil {
		return EntryDTO{}, err
	}
	return entryDTO(r.Entry()), nil
}

// AddSubject creates an ad-hoc occurrence outside the weekly template.
func (s *Service) AddSubject(ctx context.Context, streamID, dateISO, subject, courseCode, startTime, endTime string) (EntryDTO, error) {
	day, err := parseDateArg(dateISO)
	if err != nil {
		return EntryDTO{}, err
	}
	if strings.TrimSpace(subject) == "" {
		return EntryDTO{}, errors.New("subject is required")
	}
	r, err := s.App.Add(ctx, streamID, app.Addition{
		Date:        day,
		SubjectName: subject,
		CourseCode:  courseCode,
		StartTime:   startTime,
		EndTime:     endTime,
	})
	if err != nil {
		return EntryDTO{}, err
	}
	return entryDTO(r.Entry()), nil
}

func buildTarget(dateISO, subject string, index int) (app.Target, error) {
	day, err := parseDateArg(dateISO)
	if err != nil {
		return app.Target{}, err
	}
	if strings.TrimSpace(subject) == "" {
		return app.Target{}, errors.New("subject is required")
	}
	if index < 0 {
		return app.Target{}, errors.New("subject index must not be negative")
	}
	return app.Target{
		Date:         day,
		SubjectName:  subject,
		SubjectIndex: index,
	}, nil
}

func parseDateArg(v string) (schedule.Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return schedule.Date{}, errors.New("date is required (YYYY-MM-DD)")
	}
	day, err := schedule.ParseDate(v)
	if err != nil {
		return schedule.Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return day, nil
}
