// Package app provides the high-level schedule operations shared by the CLI,
// the TUI and the MCP server: week generation from the stored timetable, and
// the four attendance mutations.
package app

import (
	"context"
	"errors"
	"sort"

	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/store"
	"tableflip.dev/rollcall/pkg/timetable"
)

// Service wraps persistence so UIs and the CLI can share logic. It plays the
// "server side" role for the optimistic cache: Week is the fetch collaborator
// and Mark/Cancel/Replace/Add are the mutation collaborators.
type Service struct {
	Persistence store.Persistence
}

var (
	ErrNoPersistence = errors.New("app: no persistence configured")
	ErrNotFound      = errors.New("app: occurrence not found")
)

// Target names one canonical occurrence for a mutation. RecordID, when set,
// is authoritative and the positional fields are ignored.
type Target struct {
	RecordID     string
	Date         schedule.Date
	SubjectName  string
	SubjectIndex int
	CourseCode   string
	StartTime    string
	EndTime      string
}

// Replacement describes the class standing in for a cancelled occurrence.
type Replacement struct {
	SubjectName string
	CourseCode  string
	StartTime   string
	EndTime     string

	// SubjectIndex optionally pins the replacement's occurrence ordinal;
	// defaults to the replaced occurrence's index.
	SubjectIndex *int
}

// Addition describes an ad-hoc class outside the weekly template.
type Addition struct {
	Date        schedule.Date
	SubjectName string
	CourseCode  string
	StartTime   string
	EndTime     string
}

// Streams returns the stream catalog.
func (s *Service) Streams(ctx context.Context) ([]timetable.Stream, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Streams(ctx), nil
}

// EnsureStream registers a stream in the catalog.
func (s *Service) EnsureStream(ctx context.Context, stream timetable.Stream) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	return s.Persistence.EnsureStream(stream)
}

// Slots lists the weekly template for a stream.
func (s *Service) Slots(ctx context.Context, streamID string) ([]*timetable.Slot, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Slots(ctx, streamID), nil
}

// AddSlot stores one weekly template line.
func (s *Service) AddSlot(ctx context.Context, sl *timetable.Slot) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	if sl.SubjectName == "" {
		return errors.New("app: slot subject required")
	}
	if sl.DayOfWeek < 1 || sl.DayOfWeek > 7 {
		return errors.New("app: slot day of week must be 1..7")
	}
	if err := s.Persistence.EnsureStream(timetable.Stream{ID: sl.StreamID}); err != nil {
		return err
	}
	return s.Persistence.StoreSlot(sl)
}

// RemoveSlot deletes one weekly template line.
func (s *Service) RemoveSlot(ctx context.Context, sl *timetable.Slot) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	return s.Persistence.DeleteSlot(sl)
}

// Records lists raw attendance records for a stream and date range.
func (s *Service) Records(ctx context.Context, streamID string, start, end schedule.Date) ([]*timetable.Record, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Records(ctx, streamID, start, end), nil
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

// Week builds the authoritative weekly view for a stream and date range: the
// weekly template expanded per date, plus record-born replacement and added
// occurrences, indexed, then overlaid with mark/cancel records. The view is
// rebuilt wholesale on every call; no entry survives a refetch by identity.
func (s *Service) Week(ctx context.Context, streamID string, start, end schedule.Date) ([]*schedule.Entry, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	if start.IsZero() || end.IsZero() || end.Before(start.Time) {
		return nil, errors.New("app: invalid date range")
	}

	slots := s.Persistence.Slots(ctx, streamID)
	records := s.Persistence.Records(ctx, streamID, start, end)

	entries := make([]*schedule.Entry, 0, len(slots)*7)
	for d := start; !d.After(end.Time); d = d.Next(1) {
		for _, sl := range slots {
			if sl.DayOfWeek != d.DayOfWeek() {
				continue
			}
			entries = append(entries, &schedule.Entry{
				Date:        d,
				DayOfWeek:   sl.DayOfWeek,
				SubjectName: sl.SubjectName,
				CourseCode:  sl.CourseCode,
				StartTime:   sl.StartTime,
				EndTime:     sl.EndTime,
				Status:      schedule.StatusMissed,
			})
		}
	}
	for _, r := range records {
		if r.CreatesEntry() {
			entries = append(entries, r.Entry())
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Same(b.Date) {
			return a.Date.Before(b.Date.Time)
		}
		if a.StartTime != b.StartTime {
			if a.StartTime == "" {
				return false
			}
			if b.StartTime == "" {
				return true
			}
			return a.StartTime < b.StartTime
		}
		return a.SubjectName < b.SubjectName
	})

	schedule.AssignIndexes(entries)

	// Overlay mark/cancel records onto the generated occurrences they target.
	for _, r := range records {
		if r.CreatesEntry() {
			continue
		}
		for _, e := range entries {
			if e.RecordID != "" || e.IsReplacement || e.IsAdded {
				continue
			}
			if e.Date.Same(r.Date) && e.SubjectName == r.SubjectName && e.SubjectIndex == r.SubjectIndex {
				e.Status = r.Status
				e.RecordID = r.ID
				e.IsGloballyCancelled = r.IsGloballyCancelled
				break
			}
		}
	}
	return entries, nil
}

// Mark records attendance for one occurrence, updating the existing record
// when one is already persisted.
func (s *Service) Mark(ctx context.Context, streamID string, target Target, status schedule.Status) (*timetable.Record, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	if !status.Valid() {
		return nil, errors.New("app: invalid status")
	}
	if r := s.findRecord(ctx, streamID, target); r != nil {
		r.Status = status
		if err := s.Persistence.StoreRecord(r); err != nil {
			return nil, err
		}
		return r, nil
	}
	if target.RecordID != "" {
		return nil, ErrNotFound
	}
	r := &timetable.Record{
		StreamID:     streamID,
		Date:         target.Date,
		SubjectName:  target.SubjectName,
		SubjectIndex: target.SubjectIndex,
		CourseCode:   target.CourseCode,
		StartTime:    target.StartTime,
		EndTime:      target.EndTime,
		Status:       status,
	}
	if err := s.Persistence.StoreRecord(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Cancel overlays cancellation on one occurrence.
func (s *Service) Cancel(ctx context.Context, streamID string, target Target) (*timetable.Record, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	r := s.findRecord(ctx, streamID, target)
	if r == nil {
		if target.RecordID != "" {
			return nil, ErrNotFound
		}
		r = &timetable.Record{
			StreamID:     streamID,
			Date:         target.Date,
			SubjectName:  target.SubjectName,
			SubjectIndex: target.SubjectIndex,
			CourseCode:   target.CourseCode,
			StartTime:    target.StartTime,
			EndTime:      target.EndTime,
		}
	}
	r.Status = schedule.StatusCancelled
	r.IsGloballyCancelled = true
	if err := s.Persistence.StoreRecord(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Replace cancels the target occurrence and persists the record creating its
// replacement. The replacement record is returned.
func (s *Service) Replace(ctx context.Context, streamID string, target Target, repl Replacement) (*timetable.Record, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	if repl.SubjectName == "" {
		return nil, errors.New("app: replacement subject required")
	}
	if _, err := s.Cancel(ctx, streamID, target); err != nil {
		return nil, err
	}
	index := target.SubjectIndex
	if repl.SubjectIndex != nil {
		index = *repl.SubjectIndex
	}
	r := &timetable.Record{
		StreamID:            streamID,
		Date:                target.Date,
		SubjectName:         repl.SubjectName,
		SubjectIndex:        index,
		CourseCode:          repl.CourseCode,
		StartTime:           repl.StartTime,
		EndTime:             repl.EndTime,
		Status:              schedule.StatusMissed,
		IsReplacement:       true,
		OriginalSubjectName: target.SubjectName,
	}
	if err := s.Persistence.StoreRecord(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Add persists the record creating an ad-hoc occurrence.
func (s *Service) Add(ctx context.Context, streamID string, add Addition) (*timetable.Record, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	if add.SubjectName == "" {
		return nil, errors.New("app: subject required")
	}
	if add.Date.IsZero() {
		return nil, errors.New("app: date required")
	}
	r := &timetable.Record{
		StreamID:    streamID,
		Date:        add.Date,
		SubjectName: add.SubjectName,
		CourseCode:  add.CourseCode,
		StartTime:   add.StartTime,
		EndTime:     add.EndTime,
		Status:      schedule.StatusMissed,
		IsAdded:     true,
	}
	if err := s.Persistence.StoreRecord(r); err != nil {
		return nil, err
	}
	return r, nil
}

// findRecord locates the persisted record for a target, by id when given.
func (s *Service) findRecord(ctx context.Context, streamID string, target Target) *timetable.Record {
	records := s.Persistence.Records(ctx, streamID, target.Date, target.Date)
	for _, r := range records {
		if target.RecordID != "" {
			if r.ID == target.RecordID {
				return r
			}
			continue
		}
		if r.CreatesEntry() {
			continue
		}
		if r.Date.Same(target.Date) && r.SubjectName == target.SubjectName && r.SubjectIndex == target.SubjectIndex {
			return r
		}
	}
	return nil
}
