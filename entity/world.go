// Package entity is a minimal entity registry: entities are ids carrying
// a set of component values, spawned from bundles and visited by component
// type.
package entity

import (
	"reflect"
	"sort"
	"sync"
)

// Entity identifies a spawned entity. The zero Entity is invalid.
type Entity uint64

// World holds entities and their components. It is safe for concurrent use.
type World struct {
	mu       sync.RWMutex
	next     Entity
	entities map[Entity]map[reflect.Type]any
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{entities: make(map[Entity]map[reflect.Type]any)}
}

// Spawn creates a new entity carrying the given components and returns it.
// Components are keyed by their dynamic type; a later component of the same
// type replaces an earlier one. Nil components are skipped.
func (w *World) Spawn(components ...any) Entity {
	set := make(map[reflect.Type]any, len(components))
	for _, c := range components {
		if c == nil {
			continue
		}
		set[reflect.TypeOf(c)] = c
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.next++
	w.entities[w.next] = set
	return w.next
}

// Insert adds or replaces a component on an existing entity.
// It reports false if the entity does not exist.
func (w *World) Insert(e Entity, component any) bool {
	if component == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	set, ok := w.entities[e]
	if !ok {
		return false
	}
	set[reflect.TypeOf(component)] = component
	return true
}

// Despawn removes an entity and all its components.
func (w *World) Despawn(e Entity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entities[e]; !ok {
		return false
	}
	delete(w.entities, e)
	return true
}

// Len returns the number of live entities.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// Get returns the component of type T on entity e.
func Get[T any](w *World, e Entity) (T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var zero T
	set, ok := w.entities[e]
	if !ok {
		return zero, false
	}
	c, ok := set[reflect.TypeFor[T]()]
	if !ok {
		return zero, false
	}
	return c.(T), true
}

// Query calls fn for every entity carrying a component of type T, in
// spawn order. fn runs without the world lock held, so it may spawn or
// despawn entities; such changes are not visible to the running query.
func Query[T any](w *World, fn func(Entity, T)) {
	key := reflect.TypeFor[T]()

	type match struct {
		e Entity
		c T
	}
	w.mu.RLock()
	matches := make([]match, 0, len(w.entities))
	for e, set := range w.entities {
		if c, ok := set[key]; ok {
			matches = append(matches, match{e: e, c: c.(T)})
		}
	}
	w.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].e < matches[j].e })
	for _, m := range matches {
		fn(m.e, m.c)
	}
}
