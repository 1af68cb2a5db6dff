package schedule

import "sort"

// AssignIndexes annotates every entry with its SubjectIndex: a deterministic
// ordinal disambiguating entries that collide on (date, subjectName). The
// ordinal is a function of the multiset of colliding entries ordered by start
// time ascending (untimed entries sort after all timed ones), never of the
// slice position, so two runs over the same multiset agree regardless of
// input order. Exact ties (same date, subject and start time) keep their
// original relative order.
//
// The input slice is returned unchanged in order; entries are annotated in
// place through their pointers.
func AssignIndexes(entries []*Entry) []*Entry {
	ordered := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			ordered = append(ordered, e)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.Date.Same(b.Date) {
			return a.Date.Before(b.Date.Time)
		}
		if a.SubjectName != b.SubjectName {
			return a.SubjectName < b.SubjectName
		}
		return clockLess(a.StartTime, b.StartTime)
	})

	counters := make(map[string]int, len(ordered))
	for _, e := range ordered {
		key := e.Date.ISO() + "\x00" + e.SubjectName
		e.SubjectIndex = counters[key]
		counters[key]++
	}
	return entries
}

// clockLess orders HH:MM strings ascending with the empty string (no time)
// sorting after every real time.
func clockLess(a, b string) bool {
	switch {
	case a == "" && b == "":
		return false
	case a == "":
		return false
	case b == "":
		return true
	}
	return a < b
}
