package ecs

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// borrowState implements the scoped borrow guard every storage carries.
// The counter holds the number of active shared borrows, or -1 while the
// storage is exclusively borrowed. Conflicting borrows are programming
// errors and panic rather than corrupt iteration state.
type borrowState struct {
	state atomic.Int32
}

func (b *borrowState) beginRead(ct *componentType) {
	for {
		s := b.state.Load()
		if s < 0 {
			panic(fmt.Sprintf("ecs: storage for %s is exclusively borrowed by a mutable query", ct))
		}

		if b.state.CompareAndSwap(s, s+1) {
			return
		}
	}
}

func (b *borrowState) endRead() {
	b.state.Add(-1)
}

func (b *borrowState) beginWrite(ct *componentType) {
	if !b.state.CompareAndSwap(0, -1) {
		panic(fmt.Sprintf("ecs: storage for %s is already borrowed by another query", ct))
	}
}

func (b *borrowState) endWrite() {
	b.state.Store(0)
}

// erasedStorage is the type-erased view the World keeps per ComponentID.
type erasedStorage interface {
	componentType() *componentType
	length() int

	// removeSlot drops the entry owned by the given entity slot, if any.
	removeSlot(slot uint32) bool

	// denseEntities exposes the dense owner list for query iteration.
	denseEntities() []Entity

	borrows() *borrowState
}

// storage is a sparse set holding all values of one component type.
// entities and values are kept dense; sparse maps an entity slot to its
// dense index, or -1 when the slot has no entry.
type storage[T any] struct {
	borrowState

	ct       *componentType
	entities []Entity
	values   []T
	sparse   []int32
}

func newStorage[T any](ct *componentType, capacity int) *storage[T] {
	return &storage[T]{
		ct:       ct,
		entities: make([]Entity, 0, capacity),
		values:   make([]T, 0, capacity),
	}
}

func (s *storage[T]) componentType() *componentType { return s.ct }

func (s *storage[T]) length() int { return len(s.entities) }

func (s *storage[T]) denseEntities() []Entity { return s.entities }

func (s *storage[T]) borrows() *borrowState { return &s.borrowState }

// denseIndex returns the dense position for the given slot, or -1.
func (s *storage[T]) denseIndex(slot uint32) int32 {
	if int(slot) >= len(s.sparse) {
		return -1
	}

	return s.sparse[slot]
}

// set inserts or replaces the value owned by e. When an entry already exists
// the previous value is returned, these are upsert semantics.
func (s *storage[T]) set(e Entity, value T) (prev T, replaced bool) {
	if idx := s.denseIndex(e.index); idx >= 0 {
		prev = s.values[idx]
		s.values[idx] = value
		s.entities[idx] = e
		return prev, true
	}

	for int(e.index) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}

	s.entities = append(s.entities, e)
	s.values = append(s.values, value)
	s.sparse[e.index] = int32(len(s.entities) - 1)

	return prev, false
}

// remove drops the entry for the given slot by swapping it with the last
// dense element, keeping the storage dense. Returns the removed value.
func (s *storage[T]) remove(slot uint32) (T, bool) {
	var zero T

	idx := s.denseIndex(slot)
	if idx < 0 {
		return zero, false
	}

	value := s.values[idx]

	last := int32(len(s.entities) - 1)
	if idx != last {
		moved := s.entities[last]
		s.entities[idx] = moved
		s.values[idx] = s.values[last]
		s.sparse[moved.index] = idx
	}

	s.entities = s.entities[:last]
	s.values[last] = zero // release references held by the value
	s.values = s.values[:last]
	s.sparse[slot] = -1

	return value, true
}

func (s *storage[T]) removeSlot(slot uint32) bool {
	_, ok := s.remove(slot)
	return ok
}

// value returns a copy of the value owned by e, verifying that the stored
// entry still belongs to e's version.
func (s *storage[T]) value(e Entity) (T, bool) {
	var zero T

	idx := s.denseIndex(e.index)
	if idx < 0 || s.entities[idx] != e {
		return zero, false
	}

	return s.values[idx], true
}

// valueAt returns a pointer to the value owned by the given slot. The pointer
// stays valid until the next structural mutation of this storage.
func (s *storage[T]) valueAt(slot uint32) (*T, bool) {
	idx := s.denseIndex(slot)
	if idx < 0 {
		return nil, false
	}

	return &s.values[idx], true
}

// storageFor returns the storage for T, registering the component type on
// first use. ComponentIDs are assigned densely, so the storage list is always
// indexed by id.
func storageFor[T any](w *World) *storage[T] {
	ct := w.registry.register(reflect.TypeFor[T]())

	if int(ct.id) < len(w.storages) {
		return w.storages[ct.id].(*storage[T])
	}

	st := newStorage[T](ct, w.entityCapacity)
	w.storages = append(w.storages, st)

	return st
}

// lookupStorage resolves the storage for T without registering it.
func lookupStorage[T any](w *World) (*storage[T], error) {
	ct, err := lookupComponentType[T](w)
	if err != nil {
		return nil, err
	}

	return w.storages[ct.id].(*storage[T]), nil
}
