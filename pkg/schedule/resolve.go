package schedule

import (
	"fmt"
	"strings"
)

// Position locates one rendered entry within the full indexed view.
type Position struct {
	// GlobalIndex is the entry's index in the indexed view, or -1 when the
	// entry could not be located. Callers seeing -1 must not patch the cache
	// optimistically; the recovery path is a full invalidate-and-refetch.
	GlobalIndex int

	// LocalIndex is the entry's linear position inside the day group it was
	// rendered from.
	LocalIndex int

	// SubjectIndex is the resolved occurrence ordinal (0 when unresolved).
	SubjectIndex int

	// Key is a render-stable composite key for the resolved instance.
	Key string
}

// Resolve maps a UI-rendered entry back to its canonical occurrence in the
// indexed view. RecordID, when set, is authoritative. Otherwise matching is
// positional: the target's rank among look-alike day-group entries selects
// the same-ranked look-alike in the view. When the two counts disagree the
// first view candidate wins; that fallback is best effort only.
func Resolve(target *Entry, dayGroup, view []*Entry) Position {
	pos := Position{GlobalIndex: -1}
	if target == nil {
		return pos
	}
	pos.LocalIndex = localIndexOf(target, dayGroup)
	pos.Key = renderKey(target, pos.LocalIndex)

	var resolved *Entry
	if target.RecordID != "" {
		for i, e := range view {
			if e != nil && e.RecordID == target.RecordID {
				resolved = e
				pos.GlobalIndex = i
				break
			}
		}
		if resolved != nil {
			pos.SubjectIndex = resolved.SubjectIndex
			return pos
		}
		// A record id that is missing from the view falls through to the
		// positional match; the record may not have been reconciled yet.
	}

	candidates := make([]*Entry, 0, 2)
	for _, e := range view {
		if sameOccurrenceFields(e, target) {
			candidates = append(candidates, e)
		}
	}
	rank := 0
	for _, e := range dayGroup {
		if e == target {
			break
		}
		if sameOccurrenceFields(e, target) && e.IsReplacement == target.IsReplacement {
			rank++
		}
	}
	switch {
	case rank < len(candidates):
		resolved = candidates[rank]
	case len(candidates) > 0:
		resolved = candidates[0]
	}
	if resolved == nil {
		return pos
	}
	pos.SubjectIndex = resolved.SubjectIndex

	for i, e := range view {
		if sameOccurrenceFields(e, target) && e.SubjectIndex == pos.SubjectIndex {
			pos.GlobalIndex = i
			break
		}
	}
	return pos
}

// FindOccurrence returns the view entry carrying (date, subject, index), or
// nil when the view holds no such occurrence.
func FindOccurrence(view []*Entry, date Date, subject string, index int) *Entry {
	for _, e := range view {
		if e != nil && e.Date.Same(date) && e.SubjectName == subject && e.SubjectIndex == index {
			return e
		}
	}
	return nil
}

// DayGroup returns the entries of view falling on date, preserving view order.
func DayGroup(view []*Entry, date Date) []*Entry {
	group := make([]*Entry, 0, 8)
	for _, e := range view {
		if e != nil && e.Date.Same(date) {
			group = append(group, e)
		}
	}
	return group
}

// sameOccurrenceFields compares the four fields that identify an occurrence
// when no record id exists.
func sameOccurrenceFields(e, target *Entry) bool {
	if e == nil || target == nil {
		return false
	}
	return e.Date.Same(target.Date) &&
		e.SubjectName == target.SubjectName &&
		e.StartTime == target.StartTime &&
		e.CourseCode == target.CourseCode
}

func localIndexOf(target *Entry, dayGroup []*Entry) int {
	for i, e := range dayGroup {
		if e == target {
			return i
		}
	}
	return 0
}

func renderKey(e *Entry, localIndex int) string {
	if e.RecordID != "" {
		return fmt.Sprintf("%s_%d", e.RecordID, localIndex)
	}
	return strings.Join([]string{
		e.Date.ISO(),
		e.SubjectName,
		e.StartTime,
		fmt.Sprintf("%t", e.IsReplacement),
		fmt.Sprintf("%d", localIndex),
	}, "/")
}
