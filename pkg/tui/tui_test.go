package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/store"
	"tableflip.dev/rollcall/pkg/timetable"
)

type fakeStore struct {
	mu      sync.Mutex
	counter int
	streams map[string]timetable.Stream
	slots   map[string]*timetable.Slot
	records map[string]*timetable.Record

	failWrites bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		streams: make(map[string]timetable.Stream),
		slots:   make(map[string]*timetable.Slot),
		records: make(map[string]*timetable.Record),
	}
}

func (m *fakeStore) newID() string {
	m.counter++
	return fmt.Sprintf("tui-%d", m.counter)
}

func (m *fakeStore) Streams(_ context.Context) []timetable.Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]timetable.Stream, 0, len(m.streams))
	for _, s := range m.streams {
		out = append(out, s)
	}
	return out
}

func (m *fakeStore) EnsureStream(s timetable.Stream) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streams[s.ID] = s
	return nil
}

func (m *fakeStore) Slots(_ context.Context, streamID string) []*timetable.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*timetable.Slot, 0, len(m.slots))
	for _, sl := range m.slots {
		if sl.StreamID == streamID {
			cp := *sl
			out = append(out, &cp)
		}
	}
	return out
}

func (m *fakeStore) StoreSlot(sl *timetable.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sl.ID == "" {
		sl.ID = m.newID()
	}
	cp := *sl
	m.slots[sl.ID] = &cp
	return nil
}

func (m *fakeStore) DeleteSlot(sl *timetable.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, sl.ID)
	return nil
}

func (m *fakeStore) Records(_ context.Context, streamID string, start, end schedule.Date) []*timetable.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*timetable.Record, 0, len(m.records))
	for _, r := range m.records {
		if r.StreamID != streamID {
			continue
		}
		if !start.IsZero() && r.Date.Before(start.Time) && !r.Date.Same(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end.Time) && !r.Date.Same(end) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out
}

func (m *fakeStore) StoreRecord(r *timetable.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return fmt.Errorf("write rejected")
	}
	if r.ID == "" {
		r.ID = m.newID()
	}
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *fakeStore) DeleteRecord(r *timetable.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, r.ID)
	return nil
}

func (m *fakeStore) Watch(_ context.Context) (<-chan store.Event, error) {
	ch := make(chan store.Event)
	close(ch)
	return ch, nil
}

func testModel(t *testing.T) (*Model, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	svc := &app.Service{Persistence: fs}
	ctx := context.Background()

	slots := []*timetable.Slot{
		{StreamID: "cs-2a", DayOfWeek: 1, SubjectName: "Math", CourseCode: "MATH101", StartTime: "09:00", EndTime: "10:00"},
		{StreamID: "cs-2a", DayOfWeek: 1, SubjectName: "Math", CourseCode: "MATH101", StartTime: "11:00", EndTime: "12:00"},
		{StreamID: "cs-2a", DayOfWeek: 2, SubjectName: "Physics", CourseCode: "PHYS110", StartTime: "10:00", EndTime: "11:00"},
	}
	for _, sl := range slots {
		if err := svc.AddSlot(ctx, sl); err != nil {
			t.Fatalf("add slot: %v", err)
		}
	}

	m := New(svc, "cs-2a")
	start, err := schedule.ParseDate("2024-01-08") // a Monday
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	m.weekStart = start
	return m, fs
}

// loadInto runs the fetch command and feeds the result back through Update.
func loadInto(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.loadWeek()
	if cmd == nil {
		return
	}
	if _, err := feed(m, cmd); err != nil {
		t.Fatalf("load week: %v", err)
	}
}

// feed executes a command synchronously and routes its message into Update.
func feed(m *Model, cmd tea.Cmd) (tea.Msg, error) {
	msg := cmd()
	if lm, ok := msg.(weekLoadedMsg); ok && lm.err != nil {
		return msg, lm.err
	}
	m.Update(msg)
	return msg, nil
}

func key(s string) tea.KeyPressMsg {
	if len(s) == 1 {
		return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
	}
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	}
	return tea.KeyPressMsg{Text: s}
}

func TestWeekLoadsAndRenders(t *testing.T) {
	m, _ := testModel(t)
	loadInto(t, m)

	if len(m.view) != 3 {
		t.Fatalf("got %d entries, want 3", len(m.view))
	}
	out := m.View()
	if !strings.Contains(out, "Math") || !strings.Contains(out, "Physics") {
		t.Fatalf("view missing subjects:\n%s", out)
	}
	if !strings.Contains(out, "2024-01-08") {
		t.Fatalf("view missing week range:\n%s", out)
	}
}

func TestCursorNavigation(t *testing.T) {
	m, _ := testModel(t)
	loadInto(t, m)

	if m.cursor != 0 {
		t.Fatalf("cursor should start at 0")
	}
	m.Update(key("j"))
	if m.cursor != 1 {
		t.Fatalf("j should move cursor down, got %d", m.cursor)
	}
	m.Update(key("k"))
	if m.cursor != 0 {
		t.Fatalf("k should move cursor up, got %d", m.cursor)
	}
}

func TestMarkAppliesOptimisticallyThenPersists(t *testing.T) {
	m, fs := testModel(t)
	loadInto(t, m)

	_, cmd := m.Update(key("o"))
	if cmd == nil {
		t.Fatalf("mark should produce a command")
	}
	// Optimistic patch is visible before the write settles.
	if m.view[0].Status != schedule.StatusOccurred {
		t.Fatalf("optimistic mark not applied: %+v", m.view[0])
	}
	if len(m.pending) != 1 {
		t.Fatalf("mutation key not leased")
	}

	msg := cmd()
	m.Update(msg)
	if len(m.pending) != 0 {
		t.Fatalf("lease not released after settle")
	}
	if len(fs.records) != 1 {
		t.Fatalf("record not persisted, have %d", len(fs.records))
	}
}

func TestMarkRollsBackOnRejectedWrite(t *testing.T) {
	m, fs := testModel(t)
	loadInto(t, m)
	fs.failWrites = true

	_, cmd := m.Update(key("o"))
	if m.view[0].Status != schedule.StatusOccurred {
		t.Fatalf("optimistic mark not applied")
	}

	msg := cmd()
	m.Update(msg)
	if m.view[0].Status != schedule.StatusMissed {
		t.Fatalf("rejected write must roll the view back, got %s", m.view[0].Status)
	}
	if !strings.HasPrefix(m.status, "ERR:") {
		t.Fatalf("status should surface the error, got %q", m.status)
	}
}

func TestSecondMutationOnSameKeyIsRefused(t *testing.T) {
	m, _ := testModel(t)
	loadInto(t, m)

	_, first := m.Update(key("o"))
	if first == nil {
		t.Fatalf("first mark should produce a command")
	}
	// The optimistic patch already flipped the status; the lease must still
	// hold for the occurrence.
	_, second := m.Update(key("m"))
	if second != nil {
		t.Fatalf("second mutation on the same occurrence must be refused until the first settles")
	}
	if len(m.pending) != 1 {
		t.Fatalf("expected exactly one leased key, got %d", len(m.pending))
	}
	if m.view[0].Status != schedule.StatusOccurred {
		t.Fatalf("refused mutation must not touch the view, got %s", m.view[0].Status)
	}
	if !strings.Contains(m.status, "in flight") {
		t.Fatalf("status should explain the refusal, got %q", m.status)
	}
}

func TestMarkLandsOnCursoredLookalike(t *testing.T) {
	fs := newFakeStore()
	svc := &app.Service{Persistence: fs}
	ctx := context.Background()

	// Two occurrences indistinguishable by (date, subject, start, code);
	// only their assigned ordinals tell them apart.
	for i := 0; i < 2; i++ {
		sl := &timetable.Slot{StreamID: "cs-2a", DayOfWeek: 1, SubjectName: "Lab", CourseCode: "L", StartTime: "09:00", EndTime: "11:00"}
		if err := svc.AddSlot(ctx, sl); err != nil {
			t.Fatalf("add slot: %v", err)
		}
	}
	m := New(svc, "cs-2a")
	start, err := schedule.ParseDate("2024-01-08")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	m.weekStart = start
	loadInto(t, m)
	if len(m.view) != 2 {
		t.Fatalf("got %d entries, want 2", len(m.view))
	}

	m.Update(key("j"))
	_, cmd := m.Update(key("o"))
	if cmd == nil {
		t.Fatalf("mark should produce a command")
	}
	if m.view[0].Status != schedule.StatusMissed {
		t.Fatalf("first look-alike must be untouched, got %s", m.view[0].Status)
	}
	if m.view[1].Status != schedule.StatusOccurred {
		t.Fatalf("mark must land on the cursored look-alike, got %s", m.view[1].Status)
	}

	msg := cmd()
	m.Update(msg)
	if len(fs.records) != 1 {
		t.Fatalf("record not persisted, have %d", len(fs.records))
	}
	for _, r := range fs.records {
		if r.SubjectIndex != 1 {
			t.Fatalf("persisted record must carry ordinal 1, got %d", r.SubjectIndex)
		}
	}
}

func TestAddViaInputOverlay(t *testing.T) {
	m, fs := testModel(t)
	loadInto(t, m)

	m.Update(key("a"))
	if m.mode != modeInput {
		t.Fatalf("a should open the input overlay")
	}
	for _, r := range "Chess" {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatalf("enter should produce the add command")
	}
	if m.mode != modeNormal {
		t.Fatalf("overlay should close on enter")
	}

	var added *schedule.Entry
	for _, e := range m.view {
		if e.IsAdded {
			added = e
		}
	}
	if added == nil || added.SubjectName != "Chess" {
		t.Fatalf("optimistic add missing: %+v", added)
	}

	msg := cmd()
	done, ok := msg.(mutationDoneMsg)
	if !ok || done.err != nil {
		t.Fatalf("add write failed: %+v", msg)
	}
	if !done.refetch {
		t.Fatalf("synthetic entries must force a refetch")
	}
	if len(fs.records) != 1 {
		t.Fatalf("record not persisted")
	}
}

func TestWeekPaging(t *testing.T) {
	m, _ := testModel(t)
	loadInto(t, m)

	_, cmd := m.Update(key("l"))
	if m.weekStart.ISO() != "2024-01-15" {
		t.Fatalf("l should page forward a week, got %s", m.weekStart.ISO())
	}
	if cmd == nil {
		t.Fatalf("paging should trigger a fetch")
	}
	if _, err := feed(m, cmd); err != nil {
		t.Fatalf("load next week: %v", err)
	}
	if len(m.view) != 3 {
		t.Fatalf("next week should expand the template too, got %d", len(m.view))
	}
}
