// Package ecs implements the entity-component-system data engine: entity
// lifecycle management, dense per-type component storage and a typed query
// engine with read-only, mutable and parallel iteration.
package ecs

import (
	"fmt"
	"log/slog"
)

// Entity identifies one logical object in a World. It packs a 32 bit slot
// index together with a 32 bit version. The version is incremented whenever
// the slot is recycled, so a stale handle never matches a live slot again.
// Versions start at 0, so the zero Entity is the first handle a fresh World
// hands out; it is dead only until slot 0 is allocated.
type Entity struct {
	index   uint32
	version uint32
}

// ID returns the combined opaque identifier, index<<32 | version.
// Two entities are equal iff their IDs are equal.
func (e Entity) ID() uint64 {
	return uint64(e.index)<<32 | uint64(e.version)
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d v%d)", e.index, e.version)
}

func (e Entity) LogValue() slog.Value {
	return slog.StringValue(e.String())
}

// entityData is the per slot bookkeeping of the entity registry.
// The component bit for type id is set iff the storage for that id holds an
// entry for the slot's current version.
type entityData struct {
	version uint32
	alive   bool
	mask    bitmask256
}
