package schedule

import "testing"

func mustDate(t *testing.T, v string) Date {
	t.Helper()
	d, err := ParseDate(v)
	if err != nil {
		t.Fatalf("parse date %s: %v", v, err)
	}
	return d
}

func TestAssignIndexesTwoSlotsSameDay(t *testing.T) {
	day := "2024-01-08"

	build := func(reversed bool) []*Entry {
		nine := &Entry{SubjectName: "Math", StartTime: "09:00", Status: StatusMissed}
		eleven := &Entry{SubjectName: "Math", StartTime: "11:00", Status: StatusMissed}
		d, err := ParseDate(day)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		nine.Date, eleven.Date = d, d
		if reversed {
			return []*Entry{eleven, nine}
		}
		return []*Entry{nine, eleven}
	}

	for _, reversed := range []bool{false, true} {
		entries := AssignIndexes(build(reversed))
		for _, e := range entries {
			switch e.StartTime {
			case "09:00":
				if e.SubjectIndex != 0 {
					t.Fatalf("reversed=%t: 09:00 slot got index %d, want 0", reversed, e.SubjectIndex)
				}
			case "11:00":
				if e.SubjectIndex != 1 {
					t.Fatalf("reversed=%t: 11:00 slot got index %d, want 1", reversed, e.SubjectIndex)
				}
			}
		}
	}
}

func TestAssignIndexesDeterministic(t *testing.T) {
	d1 := mustDate(t, "2024-01-08")
	d2 := mustDate(t, "2024-01-09")
	entries := []*Entry{
		{Date: d1, SubjectName: "Math", StartTime: "11:00"},
		{Date: d1, SubjectName: "Physics", StartTime: "09:00"},
		{Date: d1, SubjectName: "Math"},
		{Date: d1, SubjectName: "Math", StartTime: "09:00"},
		{Date: d2, SubjectName: "Math", StartTime: "09:00"},
	}

	AssignIndexes(entries)
	first := make([]int, len(entries))
	for i, e := range entries {
		first[i] = e.SubjectIndex
	}

	AssignIndexes(entries)
	for i, e := range entries {
		if e.SubjectIndex != first[i] {
			t.Fatalf("entry %d index changed between runs: %d vs %d", i, first[i], e.SubjectIndex)
		}
	}

	// Untimed entries sort after every timed one.
	for _, e := range entries {
		if e.Date.Same(d1) && e.SubjectName == "Math" && e.StartTime == "" && e.SubjectIndex != 2 {
			t.Fatalf("untimed Math slot got index %d, want 2", e.SubjectIndex)
		}
	}
}

func TestAssignIndexesDense(t *testing.T) {
	d := mustDate(t, "2024-02-05")
	entries := []*Entry{
		{Date: d, SubjectName: "Chem", StartTime: "14:00"},
		{Date: d, SubjectName: "Chem", StartTime: "08:00"},
		{Date: d, SubjectName: "Chem", StartTime: "10:00"},
		{Date: d, SubjectName: "Chem", StartTime: "12:00"},
	}
	AssignIndexes(entries)

	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if seen[e.SubjectIndex] {
			t.Fatalf("duplicate index %d", e.SubjectIndex)
		}
		seen[e.SubjectIndex] = true
	}
	for i := 0; i < len(entries); i++ {
		if !seen[i] {
			t.Fatalf("index %d missing; indices must be exactly 0..%d", i, len(entries)-1)
		}
	}
}

func TestAssignIndexesExactTiesKeepRelativeOrder(t *testing.T) {
	d := mustDate(t, "2024-03-04")
	a := &Entry{Date: d, SubjectName: "Lab", StartTime: "09:00", CourseCode: "L1"}
	b := &Entry{Date: d, SubjectName: "Lab", StartTime: "09:00", CourseCode: "L2"}
	AssignIndexes([]*Entry{a, b})
	if a.SubjectIndex != 0 || b.SubjectIndex != 1 {
		t.Fatalf("tie order broke: got %d/%d, want 0/1", a.SubjectIndex, b.SubjectIndex)
	}
}
