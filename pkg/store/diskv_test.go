package store

import (
	"context"
	"testing"

	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/timetable"
)

func testDate(t *testing.T, v string) schedule.Date {
	t.Helper()
	d, err := schedule.ParseDate(v)
	if err != nil {
		t.Fatalf("parse date %s: %v", v, err)
	}
	return d
}

func TestSlotRoundTrip(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	sl := &timetable.Slot{
		StreamID:    "cs-2a",
		DayOfWeek:   1,
		SubjectName: "Math",
		CourseCode:  "MATH101",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}
	if err := p.StoreSlot(sl); err != nil {
		t.Fatalf("store slot: %v", err)
	}
	if sl.ID == "" {
		t.Fatalf("store must assign a slot id")
	}

	slots := p.Slots(context.Background(), "cs-2a")
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	got := slots[0]
	if got.SubjectName != "Math" || got.StartTime != "09:00" || got.DayOfWeek != 1 {
		t.Fatalf("slot mangled: %+v", got)
	}

	if err := p.DeleteSlot(got); err != nil {
		t.Fatalf("delete slot: %v", err)
	}
	if left := p.Slots(context.Background(), "cs-2a"); len(left) != 0 {
		t.Fatalf("slot still present after delete: %d", len(left))
	}
}

func TestRecordsFilterByRange(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	for _, day := range []string{"2024-01-01", "2024-01-08", "2024-01-14", "2024-01-15"} {
		r := &timetable.Record{
			StreamID:    "cs-2a",
			Date:        testDate(t, day),
			SubjectName: "Math",
			Status:      schedule.StatusOccurred,
		}
		if err := p.StoreRecord(r); err != nil {
			t.Fatalf("store record for %s: %v", day, err)
		}
	}

	got := p.Records(context.Background(), "cs-2a", testDate(t, "2024-01-08"), testDate(t, "2024-01-14"))
	if len(got) != 2 {
		t.Fatalf("got %d records in range, want 2", len(got))
	}
	if got[0].Date.ISO() != "2024-01-08" || got[1].Date.ISO() != "2024-01-14" {
		t.Fatalf("wrong records: %s, %s", got[0].Date.ISO(), got[1].Date.ISO())
	}
}

func TestStreamsCatalog(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	if err := p.EnsureStream(timetable.Stream{ID: "cs-2a", Name: "CS Year 2, Section A"}); err != nil {
		t.Fatalf("ensure stream: %v", err)
	}
	if err := p.EnsureStream(timetable.Stream{ID: "cs-2b"}); err != nil {
		t.Fatalf("ensure stream: %v", err)
	}

	streams := p.Streams(context.Background())
	if len(streams) != 2 {
		t.Fatalf("got %d streams, want 2", len(streams))
	}
	for _, s := range streams {
		// The index file must never leak into the catalog as a stream.
		if s.ID == "" {
			t.Fatalf("catalog contains a phantom stream: %+v", streams)
		}
	}
	if streams[0].ID != "cs-2a" || streams[0].Name != "CS Year 2, Section A" {
		t.Fatalf("stream catalog mangled: %+v", streams[0])
	}

	// Re-ensuring without a name keeps the stored one.
	if err := p.EnsureStream(timetable.Stream{ID: "cs-2a"}); err != nil {
		t.Fatalf("ensure stream again: %v", err)
	}
	streams = p.Streams(context.Background())
	if streams[0].Name != "CS Year 2, Section A" {
		t.Fatalf("stream name lost on re-ensure: %+v", streams[0])
	}
}
