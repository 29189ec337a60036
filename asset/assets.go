// Package asset provides a handle-based store for shared resources such as
// render target images and export sources.
//
// Assets are addressed by typed [Handle] values rather than pointers, so a
// handle can be cloned into components and events without extending the
// lifetime of the underlying value. The store is sharded like gg's cache to
// keep lock contention low when capture systems and loaders run in parallel.
package asset

import (
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	// shardCount must be a power of 2 for fast modulo via bitwise AND.
	shardCount = 16
	shardMask  = shardCount - 1
)

// Handle is a typed reference to an asset in an [Assets] store.
// The zero Handle is invalid.
type Handle[T any] struct {
	id uint64
}

// ID returns the numeric id of the handle.
func (h Handle[T]) ID() uint64 { return h.id }

// IsValid reports whether the handle was issued by a store.
func (h Handle[T]) IsValid() bool { return h.id != 0 }

// Clone returns a copy of the handle referencing the same asset.
func (h Handle[T]) Clone() Handle[T] { return h }

// String implements fmt.Stringer.
func (h Handle[T]) String() string {
	var zero T
	return fmt.Sprintf("Handle<%T>(%d)", zero, h.id)
}

// Assets is a thread-safe store of values of type T keyed by Handle.
// Unlike a cache, entries are never evicted; they live until Remove.
type Assets[T any] struct {
	shards [shardCount]*shard[T]
	nextID atomic.Uint64
}

type shard[T any] struct {
	mu      sync.RWMutex
	entries map[uint64]T
}

// New creates an empty store.
func New[T any]() *Assets[T] {
	a := &Assets[T]{}
	for i := range a.shards {
		a.shards[i] = &shard[T]{entries: make(map[uint64]T)}
	}
	return a
}

func (a *Assets[T]) shardFor(id uint64) *shard[T] {
	return a.shards[id&shardMask]
}

// Add stores v and returns a new handle for it. Handle ids start at 1 and
// increase monotonically.
func (a *Assets[T]) Add(v T) Handle[T] {
	id := a.nextID.Add(1)
	s := a.shardFor(id)
	s.mu.Lock()
	s.entries[id] = v
	s.mu.Unlock()
	return Handle[T]{id: id}
}

// Get returns the asset for h.
// Returns (value, true) if found, (zero, false) otherwise.
func (a *Assets[T]) Get(h Handle[T]) (T, bool) {
	s := a.shardFor(h.id)
	s.mu.RLock()
	v, ok := s.entries[h.id]
	s.mu.RUnlock()
	return v, ok
}

// Set replaces the asset for h. It reports false if h is not in the store.
func (a *Assets[T]) Set(h Handle[T], v T) bool {
	s := a.shardFor(h.id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[h.id]; !ok {
		return false
	}
	s.entries[h.id] = v
	return true
}

// Remove deletes the asset for h and returns it.
func (a *Assets[T]) Remove(h Handle[T]) (T, bool) {
	s := a.shardFor(h.id)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[h.id]
	if ok {
		delete(s.entries, h.id)
	}
	return v, ok
}

// Contains reports whether h refers to a stored asset.
func (a *Assets[T]) Contains(h Handle[T]) bool {
	_, ok := a.Get(h)
	return ok
}

// Len returns the total number of assets across all shards.
func (a *Assets[T]) Len() int {
	total := 0
	for _, s := range a.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Range calls fn for every asset until fn returns false. Iteration order is
// unspecified. fn must not call Add, Set or Remove on the same store.
func (a *Assets[T]) Range(fn func(Handle[T], T) bool) {
	for _, s := range a.shards {
		s.mu.RLock()
		for id, v := range s.entries {
			if !fn(Handle[T]{id: id}, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}
