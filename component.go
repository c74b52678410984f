package ecs

import (
	"fmt"
	"reflect"
	"unsafe"
)

// MaxComponentTypes is the number of distinct component types a single World
// can hold. The limit comes from the 256 bit component mask kept per entity.
const MaxComponentTypes = 256

// ComponentID is the dense per-World key assigned to a component type when it
// is first registered. Assignment is stable for the lifetime of the World but
// not across worlds or across runs.
type ComponentID uint8

// componentType describes one registered component type.
type componentType struct {
	typ reflect.Type
	id  ComponentID
}

func (c *componentType) String() string {
	return c.typ.String()
}

// typeKey returns the pointer to the runtime type descriptor behind t. The
// descriptor address is unique per type and already well distributed, so maps
// keyed by it skip hashing the reflect.Type interface value on every lookup.
func typeKey(t reflect.Type) uintptr {
	type eface struct {
		typ, val unsafe.Pointer
	}

	return uintptr((*eface)(unsafe.Pointer(&t)).val)
}

// typeRegistry assigns ComponentIDs within one World.
type typeRegistry struct {
	byKey map[uintptr]*componentType
	types []*componentType // dense, indexed by ComponentID
}

func newTypeRegistry() typeRegistry {
	return typeRegistry{
		byKey: make(map[uintptr]*componentType, 64),
	}
}

// register returns the componentType for t, assigning the next free id on
// first use. Exceeding MaxComponentTypes is a configuration error and panics.
func (r *typeRegistry) register(t reflect.Type) *componentType {
	key := typeKey(t)
	if ct, ok := r.byKey[key]; ok {
		return ct
	}

	if len(r.types) >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: cannot register component %s: limit of %d component types reached", t, MaxComponentTypes))
	}

	ct := &componentType{
		typ: t,
		id:  ComponentID(len(r.types)),
	}

	r.byKey[key] = ct
	r.types = append(r.types, ct)

	return ct
}

func (r *typeRegistry) lookup(t reflect.Type) (*componentType, bool) {
	ct, ok := r.byKey[typeKey(t)]
	return ct, ok
}

// lookupComponentType resolves the componentType for T, failing fast if the
// type was never registered with this world.
func lookupComponentType[T any](w *World) (*componentType, error) {
	ct, ok := w.registry.lookup(reflect.TypeFor[T]())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotRegistered, reflect.TypeFor[T]())
	}

	return ct, nil
}
