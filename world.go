package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"sync/atomic"
)

// World owns the entity registry and one storage per registered component
// type. It is the sole entry point for entity lifecycle, component access and
// queries.
//
// Structural operations (CreateEntity, DestroyEntity, Set, Remove) must not
// run while a query is open; doing so panics. Any number of read-only queries
// may be open at the same time.
type World struct {
	entities []entityData // indexed by entity slot
	free     []uint32     // slots available for reuse

	registry typeRegistry
	storages []erasedStorage // indexed by ComponentID

	resources map[reflect.Type]any

	entityCapacity int
	openQueries    atomic.Int32
}

// NewWorld creates an empty world. entityCapacity is the number of entities
// storage is preallocated for; the world grows past it as needed.
func NewWorld(entityCapacity int) *World {
	if entityCapacity < 0 {
		entityCapacity = 0
	}

	return &World{
		entities:       make([]entityData, 0, entityCapacity),
		registry:       newTypeRegistry(),
		resources:      map[reflect.Type]any{},
		entityCapacity: entityCapacity,
	}
}

// CreateEntity allocates a new entity, reusing a previously destroyed slot if
// one is free. A reused slot keeps its incremented version, so handles to the
// destroyed entity stay invalid.
func (w *World) CreateEntity() Entity {
	w.assertNoOpenQueries("CreateEntity")

	if n := len(w.free); n > 0 {
		slot := w.free[n-1]
		w.free = w.free[:n-1]

		data := &w.entities[slot]
		data.alive = true
		data.mask = bitmask256{}

		return Entity{index: slot, version: data.version}
	}

	slot := uint32(len(w.entities))
	w.entities = append(w.entities, entityData{alive: true})

	return Entity{index: slot, version: 0}
}

// DestroyEntity removes the entity and every component attached to it, then
// returns the slot to the free list. All handles to the entity become
// invalid. Destroying a dead or stale handle returns ErrInvalidEntity.
func (w *World) DestroyEntity(e Entity) error {
	w.assertNoOpenQueries("DestroyEntity")

	data, ok := w.aliveData(e)
	if !ok {
		return fmt.Errorf("destroy %v: %w", e, ErrInvalidEntity)
	}

	data.mask.eachBit(func(bit uint8) {
		w.storages[bit].removeSlot(e.index)
	})

	data.mask = bitmask256{}
	data.version++
	data.alive = false

	w.free = append(w.free, e.index)

	return nil
}

// IsAlive reports whether the handle refers to a live entity.
func (w *World) IsAlive(e Entity) bool {
	_, ok := w.aliveData(e)
	return ok
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return len(w.entities) - len(w.free)
}

// Entities yields every live entity. The sequence is invalidated by
// structural mutation.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for slot := range w.entities {
			data := &w.entities[slot]
			if !data.alive {
				continue
			}

			if !yield(Entity{index: uint32(slot), version: data.version}) {
				return
			}
		}
	}
}

// ListComponents returns the types of all components currently attached to
// the entity, in ComponentID order. Used by inspection tooling.
func (w *World) ListComponents(e Entity) ([]reflect.Type, error) {
	data, ok := w.aliveData(e)
	if !ok {
		return nil, fmt.Errorf("list components of %v: %w", e, ErrInvalidEntity)
	}

	types := make([]reflect.Type, 0, data.mask.count())
	data.mask.eachBit(func(bit uint8) {
		types = append(types, w.storages[bit].componentType().typ)
	})

	return types, nil
}

// aliveData returns the slot data for e if the handle is still valid.
func (w *World) aliveData(e Entity) (*entityData, bool) {
	if int(e.index) >= len(w.entities) {
		return nil, false
	}

	data := &w.entities[e.index]
	if !data.alive || data.version != e.version {
		return nil, false
	}

	return data, true
}

func (w *World) assertNoOpenQueries(op string) {
	if n := w.openQueries.Load(); n > 0 {
		panic(fmt.Sprintf("ecs: %s is not allowed while %d queries are open", op, n))
	}
}

// Set attaches a component value to the entity, registering the component
// type on first use. If the entity already has a component of this type the
// value is replaced and the previous value returned (upsert semantics).
func Set[T any](w *World, e Entity, value T) (prev T, replaced bool, err error) {
	w.assertNoOpenQueries("Set")

	data, ok := w.aliveData(e)
	if !ok {
		return prev, false, fmt.Errorf("set %s on %v: %w", reflect.TypeFor[T](), e, ErrInvalidEntity)
	}

	st := storageFor[T](w)
	prev, replaced = st.set(e, value)
	data.mask.set(uint8(st.ct.id))

	return prev, replaced, nil
}

// Remove detaches the component of type T from the entity and returns the
// removed value. It reports false if the entity is dead, the type was never
// registered, or the entity has no such component.
func Remove[T any](w *World, e Entity) (T, bool) {
	w.assertNoOpenQueries("Remove")

	var zero T

	data, ok := w.aliveData(e)
	if !ok {
		return zero, false
	}

	st, err := lookupStorage[T](w)
	if err != nil {
		return zero, false
	}

	value, ok := st.remove(e.index)
	if ok {
		data.mask.unset(uint8(st.ct.id))
	}

	return value, ok
}

// Get returns a pointer to the entity's component of type T. The pointer is
// a scoped borrow: it stays valid until the next structural mutation of the
// storage for T.
func Get[T any](w *World, e Entity) (*T, bool) {
	data, ok := w.aliveData(e)
	if !ok {
		return nil, false
	}

	st, err := lookupStorage[T](w)
	if err != nil || !data.mask.containsBit(uint8(st.ct.id)) {
		return nil, false
	}

	return st.valueAt(e.index)
}

// Has reports whether the entity has a component of type T. A dead handle
// returns ErrInvalidEntity; an unregistered type reports false.
func Has[T any](w *World, e Entity) (bool, error) {
	data, ok := w.aliveData(e)
	if !ok {
		return false, fmt.Errorf("has %s on %v: %w", reflect.TypeFor[T](), e, ErrInvalidEntity)
	}

	ct, ok := w.registry.lookup(reflect.TypeFor[T]())
	if !ok {
		return false, nil
	}

	return data.mask.containsBit(uint8(ct.id)), nil
}
