// Package orderlock serializes state-changing operations per order id.
// Writes to one order are mutually exclusive; unrelated orders never
// contend on each other, so a stuck operation cannot spread.
package orderlock

import (
	"sync"

	"github.com/google/uuid"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Set is a collection of reference-counted mutexes keyed by order id.
// Entries are dropped as soon as the last holder releases them.
type Set struct {
	mu sync.Mutex
	m  map[uuid.UUID]*entry
}

// NewSet creates an empty lock set.
func NewSet() *Set {
	return &Set{m: make(map[uuid.UUID]*entry)}
}

// Lock acquires the lock for the given order id, blocking until free.
// The returned func releases it and must be called exactly once.
func (s *Set) Lock(id uuid.UUID) func() {
	s.mu.Lock()
	e, ok := s.m[id]
	if !ok {
		e = &entry{}
		s.m[id] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		s.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(s.m, id)
		}
		s.mu.Unlock()
	}
}
