package cache

import (
	"fmt"
	"io"
	"os"

	"tableflip.dev/rollcall/pkg/schedule"
)

// Controller applies optimistic local mutations to cached weekly views. Each
// operation follows the same contract: cancel the in-flight fetch for the
// key, snapshot the current view, locate the target, write the patched view
// atomically, and hand the pre-mutation snapshot back for rollback. A cache
// miss returns (nil, false) and defers to the normal fetch path; an
// unresolvable target is a logged no-op that leaves the cache untouched.
//
// The controller never talks to persistence. The caller performs the real
// write, rolls back with the returned snapshot on rejection, and invalidates
// the key after Replace/Add since synthetic entries have no identity until
// the next authoritative refetch. Single-flight per entry is likewise the
// caller's lease, not enforced here.
type Controller struct {
	Views *Store

	// LogTo receives benign resolution-failure notices. Defaults to stderr.
	LogTo io.Writer
}

func NewController(views *Store) *Controller {
	return &Controller{Views: views}
}

// MarkParams targets a rendered entry for an attendance toggle.
type MarkParams struct {
	Target   *schedule.Entry
	DayGroup []*schedule.Entry
	Status   schedule.Status
}

// CancelParams targets a rendered entry for cancellation.
type CancelParams struct {
	Target   *schedule.Entry
	DayGroup []*schedule.Entry
}

// Occurrence names one canonical occurrence: replace must target a specific
// occurrence explicitly, never the render-time instance.
type Occurrence struct {
	Date         schedule.Date
	SubjectName  string
	SubjectIndex int
}

// ReplaceParams cancels an occurrence and appends its replacement.
type ReplaceParams struct {
	Original    Occurrence
	SubjectName string
	CourseCode  string
	StartTime   string
	EndTime     string

	// ReplacementIndex, when set, is the subject index carried by the
	// synthetic replacement entry; it falls back to the original's index.
	ReplacementIndex *int
}

// AddParams appends an ad-hoc occurrence.
type AddParams struct {
	Date        schedule.Date
	SubjectName string
	CourseCode  string
	StartTime   string
	EndTime     string
}

// MarkAttendance sets the status of the resolved entry, leaving every other
// field untouched.
func (c *Controller) MarkAttendance(key Key, p MarkParams) ([]*schedule.Entry, bool) {
	c.Views.CancelInFlight(key)
	snapshot, ok := c.Views.Get(key)
	if !ok {
		return nil, false
	}
	next, _ := c.Views.Get(key)
	pos := schedule.Resolve(p.Target, p.DayGroup, next)
	if pos.GlobalIndex < 0 {
		c.logf("cache: mark: entry not found for %s", describeTarget(p.Target))
		return snapshot, true
	}
	next[pos.GlobalIndex].Status = p.Status
	c.Views.Set(key, next)
	return snapshot, true
}

// CancelClass overlays cancellation on the resolved entry. Array length is
// preserved: cancellation is a status overlay, never a removal.
func (c *Controller) CancelClass(key Key, p CancelParams) ([]*schedule.Entry, bool) {
	c.Views.CancelInFlight(key)
	snapshot, ok := c.Views.Get(key)
	if !ok {
		return nil, false
	}
	next, _ := c.Views.Get(key)
	pos := schedule.Resolve(p.Target, p.DayGroup, next)
	if pos.GlobalIndex < 0 {
		c.logf("cache: cancel: entry not found for %s", describeTarget(p.Target))
		return snapshot, true
	}
	next[pos.GlobalIndex].Status = schedule.StatusCancelled
	next[pos.GlobalIndex].IsGloballyCancelled = true
	c.Views.Set(key, next)
	return snapshot, true
}

// ReplaceClass cancels the named occurrence and appends a synthetic
// replacement entry. The synthetic entry gains real identity only after the
// next authoritative refetch, so callers must invalidate on success.
func (c *Controller) ReplaceClass(key Key, p ReplaceParams) ([]*schedule.Entry, bool) {
	c.Views.CancelInFlight(key)
	snapshot, ok := c.Views.Get(key)
	if !ok {
		return nil, false
	}
	next, _ := c.Views.Get(key)
	idx := findOccurrence(next, p.Original)
	if idx < 0 {
		c.logf("cache: replace: occurrence not found for %s %s #%d",
			p.Original.Date.ISO(), p.Original.SubjectName, p.Original.SubjectIndex)
		return snapshot, true
	}
	original := next[idx]
	original.Status = schedule.StatusCancelled
	original.IsGloballyCancelled = true

	replacementIndex := original.SubjectIndex
	if p.ReplacementIndex != nil {
		replacementIndex = *p.ReplacementIndex
	}
	next = append(next, &schedule.Entry{
		Date:                original.Date,
		DayOfWeek:           original.Date.DayOfWeek(),
		SubjectName:         p.SubjectName,
		CourseCode:          p.CourseCode,
		StartTime:           p.StartTime,
		EndTime:             p.EndTime,
		Status:              schedule.StatusMissed,
		IsReplacement:       true,
		OriginalSubjectName: original.SubjectName,
		SubjectIndex:        replacementIndex,
	})
	c.Views.Set(key, next)
	return snapshot, true
}

// AddSubject appends an ad-hoc synthetic occurrence. Callers must invalidate
// on success, as with ReplaceClass.
func (c *Controller) AddSubject(key Key, p AddParams) ([]*schedule.Entry, bool) {
	c.Views.CancelInFlight(key)
	snapshot, ok := c.Views.Get(key)
	if !ok {
		return nil, false
	}
	next, _ := c.Views.Get(key)
	ordinal := 0
	for _, e := range next {
		if e.Date.Same(p.Date) && e.SubjectName == p.SubjectName {
			ordinal++
		}
	}
	next = append(next, &schedule.Entry{
		Date:         p.Date,
		DayOfWeek:    p.Date.DayOfWeek(),
		SubjectName:  p.SubjectName,
		CourseCode:   p.CourseCode,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Status:       schedule.StatusMissed,
		IsAdded:      true,
		SubjectIndex: ordinal,
	})
	c.Views.Set(key, next)
	return snapshot, true
}

// Rollback restores the pre-mutation snapshot after a rejected write. No
// partial state remains visible afterwards.
func (c *Controller) Rollback(key Key, snapshot []*schedule.Entry) {
	if snapshot == nil {
		return
	}
	c.Views.Set(key, snapshot)
}

func describeTarget(e *schedule.Entry) string {
	if e == nil {
		return "<nil target>"
	}
	return fmt.Sprintf("%s %s", e.Date.ISO(), e.SubjectName)
}

func findOccurrence(view []*schedule.Entry, occ Occurrence) int {
	for i, e := range view {
		if e.Date.Same(occ.Date) && e.SubjectName == occ.SubjectName && e.SubjectIndex == occ.SubjectIndex {
			return i
		}
	}
	return -1
}

func (c *Controller) logf(format string, args ...interface{}) {
	w := c.LogTo
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format+"\n", args...)
}
