// Package cache keeps weekly views in an explicit key to snapshot map and
// hosts the optimistic mutation controller that patches them ahead of
// persistence confirmation.
package cache

import (
	"context"
	"fmt"
	"sync"

	"tableflip.dev/rollcall/pkg/schedule"
)

// Key identifies one cached weekly view: a (stream, date range) query.
type Key string

// ViewKey builds the cache key for a stream and date range.
func ViewKey(streamID string, start, end schedule.Date) Key {
	return Key(fmt.Sprintf("%s|%s|%s", streamID, start.ISO(), end.ISO()))
}

// Store maps view keys to immutable weekly-view snapshots. Each key holds a
// single current value swapped atomically under the lock; readers get deep
// clones so no caller can mutate the cached state in place. The store also
// tracks the in-flight background fetch per key so an optimistic write can
// cancel it before a stale result lands.
type Store struct {
	mu       sync.RWMutex
	views    map[Key][]*schedule.Entry
	inflight map[Key]context.CancelFunc
}

func NewStore() *Store {
	return &Store{
		views:    make(map[Key][]*schedule.Entry),
		inflight: make(map[Key]context.CancelFunc),
	}
}

// Get returns a deep clone of the cached view for key.
func (s *Store) Get(key Key) ([]*schedule.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view, ok := s.views[key]
	if !ok {
		return nil, false
	}
	return schedule.CloneView(view), true
}

// Set replaces the view for key. The stored value is a clone, so the caller
// may keep mutating its slice afterwards without affecting the cache.
func (s *Store) Set(key Key, view []*schedule.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[key] = schedule.CloneView(view)
}

// Invalidate drops the cached view and cancels any fetch in flight for key.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, key)
	s.cancelLocked(key)
}

// CancelInFlight cancels the background fetch registered for key, if any.
// A later CompleteFetch carrying the cancelled context is discarded, which
// is what keeps a stale fetch result from clobbering an optimistic write.
func (s *Store) CancelInFlight(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(key)
}

func (s *Store) cancelLocked(key Key) {
	if cancel, ok := s.inflight[key]; ok {
		cancel()
		delete(s.inflight, key)
	}
}

// BeginFetch registers a background fetch for key and returns the context the
// fetch must run under. Any previous fetch for the same key is cancelled
// first, so at most one fetch per key is ever current.
func (s *Store) BeginFetch(ctx context.Context, key Key) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(key)
	fetchCtx, cancel := context.WithCancel(ctx)
	s.inflight[key] = cancel
	return fetchCtx
}

// CompleteFetch stores a fetched view unless the fetch was cancelled while it
// was in flight. It reports whether the result was accepted.
func (s *Store) CompleteFetch(fetchCtx context.Context, key Key, view []*schedule.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fetchCtx.Err() != nil {
		return false
	}
	if cancel, ok := s.inflight[key]; ok {
		cancel()
		delete(s.inflight, key)
	}
	s.views[key] = schedule.CloneView(view)
	return true
}
