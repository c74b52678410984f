package ecs

import "reflect"

// Resources are world-scoped singleton values, one per Go type. They replace
// process-wide globals with explicit state whose lifetime is tied to the
// World that owns it.

// SetResource stores value as the world's singleton of type T, replacing any
// previous value.
func SetResource[T any](w *World, value T) {
	w.resources[reflect.TypeFor[T]()] = &value
}

// ResourceOf returns a pointer to the world's singleton of type T.
func ResourceOf[T any](w *World) (*T, bool) {
	res, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}

	return res.(*T), true
}

// RemoveResource drops the world's singleton of type T, reporting whether one
// existed.
func RemoveResource[T any](w *World) bool {
	t := reflect.TypeFor[T]()

	_, ok := w.resources[t]
	delete(w.resources, t)

	return ok
}
