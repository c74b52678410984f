package ecs

import "reflect"

// WorldStats is a snapshot of the world's storage layout, meant for
// inspection and debugging tools.
type WorldStats struct {
	Entities       int
	ComponentTypes int

	// Components maps each registered component type to the number of live
	// entries in its storage.
	Components map[reflect.Type]int
}

// Stats collects a snapshot of the world.
func (w *World) Stats() WorldStats {
	stats := WorldStats{
		Entities:       w.EntityCount(),
		ComponentTypes: len(w.registry.types),
		Components:     make(map[reflect.Type]int, len(w.storages)),
	}

	for _, st := range w.storages {
		stats.Components[st.componentType().typ] = st.length()
	}

	return stats
}
