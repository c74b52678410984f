package ecs

import "errors"

var (
	// ErrInvalidEntity is returned when a stale or out-of-range entity handle
	// is passed to a per-entity operation.
	ErrInvalidEntity = errors.New("ecs: invalid entity")

	// ErrTypeNotRegistered is returned when a query or lookup names a
	// component type that was never attached to this world.
	ErrTypeNotRegistered = errors.New("ecs: component type not registered")
)
