// Package session holds the session-scoped active client profile.
//
// The store is an injected capability: the host creates it, decides
// whether it is persisted, and hands it to whichever components share
// the active profile.
package session

import (
	"sort"
	"sync"
)

// ActiveStore is the shared active-profile capability.
// The empty string means no profile is active.
type ActiveStore interface {
	ActiveProfileID() string
	SetActiveProfileID(id string)
}

// Store is an in-memory ActiveStore with change subscriptions.
type Store struct {
	mu       sync.RWMutex
	activeID string
	subs     map[int]func(id string)
	nextSub  int
}

// NewStore returns a store whose active profile is initial.
func NewStore(initial string) *Store {
	return &Store{
		activeID: initial,
		subs:     make(map[int]func(string)),
	}
}

// ActiveProfileID returns the active profile id, or "" when none.
func (s *Store) ActiveProfileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// SetActiveProfileID assigns the active profile. Subscribers run after the
// lock is released and only when the value actually changed.
func (s *Store) SetActiveProfileID(id string) {
	s.mu.Lock()
	if s.activeID == id {
		s.mu.Unlock()
		return
	}
	s.activeID = id
	subs := s.snapshot()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}

// Subscribe registers fn for change notifications. The returned func
// unsubscribes and may be called more than once.
func (s *Store) Subscribe(fn func(id string)) (unsubscribe func()) {
	s.mu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, key)
			s.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// snapshot returns subscribers in registration order. Caller holds mu.
func (s *Store) snapshot() []func(string) {
	keys := make([]int, 0, len(s.subs))
	for k := range s.subs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]func(string), 0, len(keys))
	for _, k := range keys {
		out = append(out, s.subs[k])
	}
	return out
}
