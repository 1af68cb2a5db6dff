package schedule

import (
	"fmt"
	"strings"
)

const (
	keyNoTime = "notime"
	keyNoCode = "nocode"
)

// MutationKey derives the in-flight tracking key for an entry whose
// SubjectIndex has already been assigned. The key is stable across calls for
// what a user considers the same occurrence; a status or course code change
// produces a new key, naturally expiring any tracking pinned to the old one.
func MutationKey(e *Entry) string {
	if e == nil {
		return ""
	}
	return MutationKeyOrdinal(e, e.SubjectIndex)
}

// MutationKeyOrdinal builds the tracking key using an explicit disambiguator,
// for callers holding entries that have not been through AssignIndexes.
func MutationKeyOrdinal(e *Entry, ordinal int) string {
	if e == nil {
		return ""
	}
	timeMarker := keyNoTime
	if e.StartTime != "" {
		timeMarker = strings.ReplaceAll(e.StartTime, ":", "")
	}
	typeTag := "regular"
	switch {
	case e.IsAdded:
		typeTag = "added"
	case e.IsReplacement:
		typeTag = "replacement"
	}
	tail := e.RecordID
	if tail == "" {
		tail = e.CourseCode
	}
	if tail == "" {
		tail = keyNoCode
	}
	return fmt.Sprintf("%s|%s|%d|%s|%s|%s|%s",
		e.Date.ISO(), e.SubjectName, ordinal, timeMarker, e.Status, typeTag, tail)
}
