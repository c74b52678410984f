package ecs

import (
	"fmt"
	"runtime"
	"sync"
)

// QueryOption restricts or extends a query at construction time. The
// implementations are Without (exclusion) and *Opt (optional fetch).
type QueryOption interface {
	applyToQuery(w *World, q *querySpec) error
}

type queryOptionFunc func(w *World, q *querySpec) error

func (f queryOptionFunc) applyToQuery(w *World, q *querySpec) error {
	return f(w, q)
}

// Without excludes all entities that have a component of type T from the
// query's results. Naming a type that was never registered with the world is
// a configuration error reported at query construction.
func Without[T any]() QueryOption {
	return queryOptionFunc(func(w *World, q *querySpec) error {
		ct, err := lookupComponentType[T](w)
		if err != nil {
			return err
		}

		q.exclude.set(uint8(ct.id))
		return nil
	})
}

// Opt fetches the component of type T when the entity has one, without
// excluding entities that do not. Attach a handle to a query by passing it
// as an option, then read the component per result row:
//
//	var armor Opt[Armor]
//	q, err := NewQuery1[Health](w, &armor)
//	for q.Next() {
//	    if a, ok := armor.Get(q.Entity()); ok { ... }
//	}
//
// Get is safe to call from parallel query workers.
type Opt[T any] struct {
	st *storage[T]
}

func (o *Opt[T]) applyToQuery(w *World, q *querySpec) error {
	st, err := lookupStorage[T](w)
	if err != nil {
		return err
	}

	bit := uint8(st.ct.id)
	if q.include.containsBit(bit) {
		return fmt.Errorf("ecs: component type %s is both required and optional", st.ct)
	}

	o.st = st
	q.optional.set(bit)
	q.shared = append(q.shared, st)

	return nil
}

// Get returns the component for e, or the zero value and false if e does not
// have one.
func (o *Opt[T]) Get(e Entity) (T, bool) {
	if o.st == nil {
		panic("ecs: Opt handle was not attached to a query")
	}

	return o.st.value(e)
}

// querySpec collects the component sets of a query before iteration starts.
type querySpec struct {
	world    *World
	include  bitmask256
	exclude  bitmask256
	optional bitmask256
	required []erasedStorage
	shared   []erasedStorage
}

func newQuerySpec(w *World) querySpec {
	return querySpec{world: w}
}

// addRequired resolves the storage for T and records it as a required
// component of the query.
func addRequired[T any](q *querySpec) (*storage[T], error) {
	st, err := lookupStorage[T](q.world)
	if err != nil {
		return nil, err
	}

	bit := uint8(st.ct.id)
	if q.include.containsBit(bit) {
		return nil, fmt.Errorf("ecs: duplicate component type %s in query", st.ct)
	}

	q.include.set(bit)
	q.required = append(q.required, st)

	return st, nil
}

func (q *querySpec) applyOptions(opts []QueryOption) error {
	for _, opt := range opts {
		if err := opt.applyToQuery(q.world, q); err != nil {
			return err
		}
	}

	if q.include.intersects(q.exclude) || q.optional.intersects(q.exclude) {
		return fmt.Errorf("ecs: query excludes a component type it also fetches")
	}

	return nil
}

// begin acquires the query's borrows and builds the iteration cursor.
// mutable, when non-nil, is the one storage borrowed exclusively; all other
// participating storages are borrowed shared. The storage with the fewest
// live entries drives iteration.
func (q *querySpec) begin(mutable erasedStorage) cursor {
	var release []func()

	// A borrow conflict panics mid-acquisition; give back whatever was
	// already taken so the world is usable again after a recover.
	acquired := false
	defer func() {
		if !acquired {
			for _, fn := range release {
				fn()
			}
		}
	}()

	for _, st := range q.required {
		if st == mutable {
			st.borrows().beginWrite(st.componentType())
			release = append(release, st.borrows().endWrite)
		} else {
			st.borrows().beginRead(st.componentType())
			release = append(release, st.borrows().endRead)
		}
	}

	for _, st := range q.shared {
		st.borrows().beginRead(st.componentType())
		release = append(release, st.borrows().endRead)
	}

	acquired = true
	q.world.openQueries.Add(1)

	driving := q.required[0]
	for _, st := range q.required[1:] {
		if st.length() < driving.length() {
			driving = st
		}
	}

	return cursor{
		world:    q.world,
		include:  q.include,
		exclude:  q.exclude,
		entities: driving.denseEntities(),
		idx:      -1,
		open:     true,
		release:  release,
	}
}

// cursor is the single-pass iteration state shared by all query arities.
// It walks the driving storage's dense entity list and filters each entity
// against the required and excluded bits of its component mask.
type cursor struct {
	world    *World
	include  bitmask256
	exclude  bitmask256
	entities []Entity
	idx      int
	cur      Entity
	open     bool
	release  []func()
}

// Next advances to the next matching entity. It returns false when the query
// is exhausted, releasing all held borrows.
func (c *cursor) Next() bool {
	if !c.open {
		return false
	}

	for c.idx++; c.idx < len(c.entities); c.idx++ {
		e := c.entities[c.idx]

		mask := &c.world.entities[e.index].mask
		if mask.contains(c.include) && !mask.intersects(c.exclude) {
			c.cur = e
			return true
		}
	}

	c.Close()
	return false
}

// Entity returns the current match. Only valid after Next returned true.
func (c *cursor) Entity() Entity {
	return c.cur
}

// Close releases the query's borrows. It is safe to call more than once and
// is called automatically when iteration is exhausted; abandoning a query
// early without calling Close keeps its borrows held.
func (c *cursor) Close() {
	if !c.open {
		return
	}

	c.open = false
	for _, fn := range c.release {
		fn()
	}

	c.world.openQueries.Add(-1)
}

// forEachParallel evaluates the whole query by fanning the driving storage
// out to workers, each scanning one contiguous partition. Partitions are
// disjoint, so every matching entity is visited exactly once, with no
// ordering guarantee across workers. Blocks until all workers are done, then
// releases the query's borrows.
func (c *cursor) forEachParallel(workers int, visit func(e Entity)) {
	if !c.open {
		return
	}
	defer c.Close()

	n := len(c.entities)
	if n == 0 {
		return
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)

		wg.Add(1)
		go func(partition []Entity) {
			defer wg.Done()

			for _, e := range partition {
				mask := &c.world.entities[e.index].mask
				if mask.contains(c.include) && !mask.intersects(c.exclude) {
					visit(e)
				}
			}
		}(c.entities[start:end])
	}

	wg.Wait()
}
