package cache

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"tableflip.dev/rollcall/pkg/schedule"
)

func seededController(t *testing.T) (*Controller, Key, []*schedule.Entry) {
	t.Helper()
	mon := testDate(t, "2024-01-08")
	tue := testDate(t, "2024-01-09")
	view := schedule.AssignIndexes([]*schedule.Entry{
		{Date: mon, DayOfWeek: 1, SubjectName: "Math", StartTime: "09:00", Status: schedule.StatusMissed},
		{Date: mon, DayOfWeek: 1, SubjectName: "Math", StartTime: "11:00", Status: schedule.StatusMissed},
		{Date: mon, DayOfWeek: 1, SubjectName: "Physics", StartTime: "10:00", Status: schedule.StatusMissed},
		{Date: tue, DayOfWeek: 2, SubjectName: "Chem", StartTime: "09:00", Status: schedule.StatusMissed},
		{Date: tue, DayOfWeek: 2, SubjectName: "Math", StartTime: "09:00", Status: schedule.StatusMissed},
	})

	store := NewStore()
	key := ViewKey("cs-1", mon, testDate(t, "2024-01-14"))
	store.Set(key, view)
	return NewController(store), key, view
}

func dayGroup(view []*schedule.Entry, iso string) []*schedule.Entry {
	group := make([]*schedule.Entry, 0, len(view))
	for _, e := range view {
		if e.Date.ISO() == iso {
			group = append(group, e)
		}
	}
	return group
}

func viewOf(t *testing.T, c *Controller, key Key) []*schedule.Entry {
	t.Helper()
	view, ok := c.Views.Get(key)
	if !ok {
		t.Fatalf("expected cached view for %s", key)
	}
	return view
}

func TestMarkAttendanceAndRollback(t *testing.T) {
	c, key, view := seededController(t)
	group := dayGroup(view, "2024-01-08")

	snapshot, ok := c.MarkAttendance(key, MarkParams{
		Target:   group[1],
		DayGroup: group,
		Status:   schedule.StatusOccurred,
	})
	if !ok {
		t.Fatalf("expected a snapshot, got cache miss")
	}
	if len(snapshot) != 5 {
		t.Fatalf("snapshot has %d entries, want 5", len(snapshot))
	}
	if snapshot[1].Status != schedule.StatusMissed {
		t.Fatalf("snapshot must hold the pre-mutation status")
	}

	mutated := viewOf(t, c, key)
	if mutated[1].Status != schedule.StatusOccurred {
		t.Fatalf("optimistic status not applied: %s", mutated[1].Status)
	}

	// Simulated rejection: rollback restores the exact pre-mutation view.
	c.Rollback(key, snapshot)
	restored := viewOf(t, c, key)
	if len(restored) != 5 {
		t.Fatalf("rollback changed the entry count: %d", len(restored))
	}
	for i := range restored {
		if *restored[i] != *snapshot[i] {
			t.Fatalf("entry %d differs after rollback: %+v vs %+v", i, restored[i], snapshot[i])
		}
	}
}

func TestMarkAttendanceCacheMiss(t *testing.T) {
	c := NewController(NewStore())
	key := ViewKey("cs-9", testDate(t, "2024-01-08"), testDate(t, "2024-01-14"))
	snapshot, ok := c.MarkAttendance(key, MarkParams{Target: &schedule.Entry{}, Status: schedule.StatusOccurred})
	if ok || snapshot != nil {
		t.Fatalf("cache miss must defer to the fetch path, got ok=%t", ok)
	}
}

func TestMarkAttendanceNotFoundIsBenign(t *testing.T) {
	c, key, _ := seededController(t)
	var logged bytes.Buffer
	c.LogTo = &logged

	ghost := &schedule.Entry{Date: testDate(t, "2024-01-08"), SubjectName: "History"}
	snapshot, ok := c.MarkAttendance(key, MarkParams{Target: ghost, DayGroup: []*schedule.Entry{ghost}, Status: schedule.StatusOccurred})
	if !ok || snapshot == nil {
		t.Fatalf("not-found must still return the snapshot")
	}
	if !strings.Contains(logged.String(), "not found") {
		t.Fatalf("expected a logged notice, got %q", logged.String())
	}
	current := viewOf(t, c, key)
	for i := range current {
		if *current[i] != *snapshot[i] {
			t.Fatalf("not-found mutated the cache at %d", i)
		}
	}
}

func TestNilTargetIsBenign(t *testing.T) {
	c, key, _ := seededController(t)
	var logged bytes.Buffer
	c.LogTo = &logged

	snapshot, ok := c.MarkAttendance(key, MarkParams{Status: schedule.StatusOccurred})
	if !ok || snapshot == nil {
		t.Fatalf("nil target must still return the snapshot")
	}
	if snapshot, ok = c.CancelClass(key, CancelParams{}); !ok || snapshot == nil {
		t.Fatalf("nil cancel target must still return the snapshot")
	}
	if !strings.Contains(logged.String(), "not found") {
		t.Fatalf("expected logged notices, got %q", logged.String())
	}
	current := viewOf(t, c, key)
	for i := range current {
		if *current[i] != *snapshot[i] {
			t.Fatalf("nil target mutated the cache at %d", i)
		}
	}
}

func TestCancelClassPreservesLength(t *testing.T) {
	c, key, view := seededController(t)
	group := dayGroup(view, "2024-01-09")

	snapshot, ok := c.CancelClass(key, CancelParams{Target: group[0], DayGroup: group})
	if !ok {
		t.Fatalf("expected a snapshot")
	}
	mutated := viewOf(t, c, key)
	if len(mutated) != len(snapshot) {
		t.Fatalf("cancel changed the entry count: %d vs %d", len(mutated), len(snapshot))
	}
	target := mutated[3]
	if target.Status != schedule.StatusCancelled || !target.IsGloballyCancelled {
		t.Fatalf("cancel overlay missing: %+v", target)
	}
	// Only status fields change.
	for i, e := range mutated {
		want := snapshot[i].Clone()
		if i == 3 {
			want.Status = schedule.StatusCancelled
			want.IsGloballyCancelled = true
		}
		if *e != *want {
			t.Fatalf("entry %d changed unexpectedly: %+v vs %+v", i, e, want)
		}
	}
}

func TestReplaceClassAppendsSynthetic(t *testing.T) {
	c, key, _ := seededController(t)

	snapshot, ok := c.ReplaceClass(key, ReplaceParams{
		Original:    Occurrence{Date: testDate(t, "2024-01-08"), SubjectName: "Math", SubjectIndex: 1},
		SubjectName: "Statistics",
		CourseCode:  "STAT202",
		StartTime:   "11:00",
	})
	if !ok {
		t.Fatalf("expected a snapshot")
	}
	mutated := viewOf(t, c, key)
	if len(mutated) != len(snapshot)+1 {
		t.Fatalf("replace must append exactly one entry: %d vs %d", len(mutated), len(snapshot))
	}
	original := mutated[1]
	if original.Status != schedule.StatusCancelled || !original.IsGloballyCancelled {
		t.Fatalf("original occurrence not cancelled: %+v", original)
	}
	synthetic := mutated[len(mutated)-1]
	if !synthetic.IsReplacement {
		t.Fatalf("synthetic entry missing IsReplacement")
	}
	if synthetic.OriginalSubjectName != "Math" {
		t.Fatalf("original subject = %q, want Math", synthetic.OriginalSubjectName)
	}
	if synthetic.Status != schedule.StatusMissed {
		t.Fatalf("synthetic status = %s, want missed", synthetic.Status)
	}
	if synthetic.SubjectIndex != 1 {
		t.Fatalf("replacement index should fall back to the original's: %d", synthetic.SubjectIndex)
	}
}

func TestReplaceClassExplicitIndex(t *testing.T) {
	c, key, _ := seededController(t)
	idx := 4
	_, ok := c.ReplaceClass(key, ReplaceParams{
		Original:         Occurrence{Date: testDate(t, "2024-01-09"), SubjectName: "Chem", SubjectIndex: 0},
		SubjectName:      "Biology",
		ReplacementIndex: &idx,
	})
	if !ok {
		t.Fatalf("expected a snapshot")
	}
	mutated := viewOf(t, c, key)
	if got := mutated[len(mutated)-1].SubjectIndex; got != 4 {
		t.Fatalf("caller-supplied replacement index ignored: %d", got)
	}
}

func TestAddSubjectAppendsSynthetic(t *testing.T) {
	c, key, _ := seededController(t)

	snapshot, ok := c.AddSubject(key, AddParams{
		Date:        testDate(t, "2024-01-08"),
		SubjectName: "Math",
		StartTime:   "15:00",
	})
	if !ok {
		t.Fatalf("expected a snapshot")
	}
	mutated := viewOf(t, c, key)
	if len(mutated) != len(snapshot)+1 {
		t.Fatalf("add must append exactly one entry")
	}
	synthetic := mutated[len(mutated)-1]
	if !synthetic.IsAdded || synthetic.Status != schedule.StatusMissed {
		t.Fatalf("added entry defaults wrong: %+v", synthetic)
	}
	if synthetic.SubjectIndex != 2 {
		t.Fatalf("added entry ordinal = %d, want 2 (two Math slots already on that day)", synthetic.SubjectIndex)
	}
}

func TestMutationCancelsInFlightFetch(t *testing.T) {
	c, key, view := seededController(t)
	fetchCtx := c.Views.BeginFetch(context.Background(), key)

	group := dayGroup(view, "2024-01-08")
	if _, ok := c.MarkAttendance(key, MarkParams{Target: group[0], DayGroup: group, Status: schedule.StatusOccurred}); !ok {
		t.Fatalf("expected a snapshot")
	}
	if fetchCtx.Err() == nil {
		t.Fatalf("optimistic write must cancel the in-flight fetch")
	}
	if c.Views.CompleteFetch(fetchCtx, key, view) {
		t.Fatalf("stale fetch result accepted after optimistic write")
	}
}
