package cache

import (
	"context"
	"testing"

	"tableflip.dev/rollcall/pkg/schedule"
)

func testDate(t *testing.T, v string) schedule.Date {
	t.Helper()
	d, err := schedule.ParseDate(v)
	if err != nil {
		t.Fatalf("parse date %s: %v", v, err)
	}
	return d
}

func TestStoreGetReturnsClone(t *testing.T) {
	s := NewStore()
	key := ViewKey("cs-1", testDate(t, "2024-01-08"), testDate(t, "2024-01-14"))
	s.Set(key, []*schedule.Entry{{SubjectName: "Math", Status: schedule.StatusMissed}})

	got, ok := s.Get(key)
	if !ok {
		t.Fatalf("expected cached view")
	}
	got[0].Status = schedule.StatusOccurred

	again, _ := s.Get(key)
	if again[0].Status != schedule.StatusMissed {
		t.Fatalf("mutating a Get result leaked into the cache")
	}
}

func TestStoreDiscardsStaleFetch(t *testing.T) {
	s := NewStore()
	key := ViewKey("cs-1", testDate(t, "2024-01-08"), testDate(t, "2024-01-14"))

	fetchCtx := s.BeginFetch(context.Background(), key)
	s.Set(key, []*schedule.Entry{{SubjectName: "optimistic"}})
	s.CancelInFlight(key)

	accepted := s.CompleteFetch(fetchCtx, key, []*schedule.Entry{{SubjectName: "stale"}})
	if accepted {
		t.Fatalf("cancelled fetch result must be discarded")
	}
	view, _ := s.Get(key)
	if view[0].SubjectName != "optimistic" {
		t.Fatalf("stale fetch clobbered the optimistic write: %q", view[0].SubjectName)
	}
}

func TestStoreBeginFetchCancelsPrevious(t *testing.T) {
	s := NewStore()
	key := ViewKey("cs-1", testDate(t, "2024-01-08"), testDate(t, "2024-01-14"))

	first := s.BeginFetch(context.Background(), key)
	second := s.BeginFetch(context.Background(), key)
	if first.Err() == nil {
		t.Fatalf("starting a second fetch must cancel the first")
	}
	if second.Err() != nil {
		t.Fatalf("current fetch unexpectedly cancelled")
	}
	if !s.CompleteFetch(second, key, []*schedule.Entry{{SubjectName: "fresh"}}) {
		t.Fatalf("current fetch result must be accepted")
	}
}

func TestStoreInvalidate(t *testing.T) {
	s := NewStore()
	key := ViewKey("cs-1", testDate(t, "2024-01-08"), testDate(t, "2024-01-14"))
	s.Set(key, []*schedule.Entry{{SubjectName: "Math"}})
	fetchCtx := s.BeginFetch(context.Background(), key)

	s.Invalidate(key)
	if _, ok := s.Get(key); ok {
		t.Fatalf("expected no view after invalidate")
	}
	if fetchCtx.Err() == nil {
		t.Fatalf("invalidate must cancel the in-flight fetch")
	}
}
