package entity

import "testing"

type position struct{ X, Y int }

type label string

func TestSpawnAndGet(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(position{1, 2}, label("a"))
	if e == 0 {
		t.Fatal("Spawn returned zero entity")
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}

	p, ok := Get[position](w, e)
	if !ok || p != (position{1, 2}) {
		t.Errorf("Get[position] = (%v, %v), want ({1 2}, true)", p, ok)
	}
	l, ok := Get[label](w, e)
	if !ok || l != "a" {
		t.Errorf("Get[label] = (%q, %v), want (a, true)", l, ok)
	}
	if _, ok := Get[int](w, e); ok {
		t.Error("Get[int] should report missing component")
	}
}

func TestSpawnLaterComponentWins(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(label("first"), nil, label("second"))
	l, _ := Get[label](w, e)
	if l != "second" {
		t.Errorf("Get[label] = %q, want second", l)
	}
}

func TestInsert(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(position{})
	if !w.Insert(e, label("x")) {
		t.Fatal("Insert on live entity returned false")
	}
	if _, ok := Get[label](w, e); !ok {
		t.Error("inserted component missing")
	}
	if w.Insert(Entity(99), label("y")) {
		t.Error("Insert on unknown entity should return false")
	}
}

func TestDespawn(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(position{})
	if !w.Despawn(e) {
		t.Fatal("Despawn returned false")
	}
	if w.Despawn(e) {
		t.Error("second Despawn should return false")
	}
	if w.Len() != 0 {
		t.Errorf("Len() = %d, want 0", w.Len())
	}
}

func TestQuery(t *testing.T) {
	w := NewWorld()
	e1 := w.Spawn(position{1, 1})
	w.Spawn(label("no position"))
	e3 := w.Spawn(position{3, 3}, label("both"))

	var got []Entity
	Query(w, func(e Entity, p position) {
		got = append(got, e)
		if p.X != int(e) {
			t.Errorf("entity %d got position %v", e, p)
		}
	})

	if len(got) != 2 || got[0] != e1 || got[1] != e3 {
		t.Errorf("Query visited %v, want [%d %d]", got, e1, e3)
	}
}

func TestQuerySpawnDuringIteration(t *testing.T) {
	w := NewWorld()
	w.Spawn(position{})

	visits := 0
	Query(w, func(Entity, position) {
		visits++
		w.Spawn(position{})
	})
	if visits != 1 {
		t.Errorf("visits = %d, want 1", visits)
	}
	if w.Len() != 2 {
		t.Errorf("Len() = %d, want 2", w.Len())
	}
}
