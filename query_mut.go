package ecs

// Mutable queries. Exactly one component type per query, the first type
// parameter, is borrowed exclusively and yielded as a pointer; the remaining
// types are borrowed shared and yielded as values. Two open queries that
// both mutate the same component type panic at construction, so no two live
// mutable borrows can alias the same entity's component.
//
// The yielded pointer is valid until the next call to Next.

// QueryMut1 iterates over all entities with a component of type A, yielding
// the component for mutation.
type QueryMut1[A any] struct {
	cursor
	a *storage[A]
}

func NewQueryMut1[A any](w *World, opts ...QueryOption) (*QueryMut1[A], error) {
	spec := newQuerySpec(w)

	a, err := addRequired[A](&spec)
	if err != nil {
		return nil, err
	}

	if err := spec.applyOptions(opts); err != nil {
		return nil, err
	}

	q := &QueryMut1[A]{a: a}
	q.cursor = spec.begin(a)

	return q, nil
}

// Get returns a pointer to the current entity's component. Only valid after
// Next returned true.
func (q *QueryMut1[A]) Get() *A {
	a, _ := q.a.valueAt(q.cur.index)
	return a
}

// ForEachParallel evaluates the whole query across worker goroutines and
// blocks until they finish. Workers own disjoint partitions of the driving
// storage, so the pointers passed to fn never alias across workers.
// workers <= 0 uses GOMAXPROCS. Must be called on a freshly constructed
// query.
func (q *QueryMut1[A]) ForEachParallel(workers int, fn func(e Entity, a *A)) {
	q.forEachParallel(workers, func(e Entity) {
		a, _ := q.a.valueAt(e.index)
		fn(e, a)
	})
}

// QueryMut2 iterates over all entities with components of types A and B,
// yielding A for mutation.
type QueryMut2[A, B any] struct {
	cursor
	a *storage[A]
	b *storage[B]
}

func NewQueryMut2[A, B any](w *World, opts ...QueryOption) (*QueryMut2[A, B], error) {
	spec := newQuerySpec(w)

	a, err := addRequired[A](&spec)
	if err != nil {
		return nil, err
	}

	b, err := addRequired[B](&spec)
	if err != nil {
		return nil, err
	}

	if err := spec.applyOptions(opts); err != nil {
		return nil, err
	}

	q := &QueryMut2[A, B]{a: a, b: b}
	q.cursor = spec.begin(a)

	return q, nil
}

func (q *QueryMut2[A, B]) Get() (*A, B) {
	a, _ := q.a.valueAt(q.cur.index)
	b, _ := q.b.valueAt(q.cur.index)
	return a, *b
}

func (q *QueryMut2[A, B]) ForEachParallel(workers int, fn func(e Entity, a *A, b B)) {
	q.forEachParallel(workers, func(e Entity) {
		a, _ := q.a.valueAt(e.index)
		b, _ := q.b.valueAt(e.index)
		fn(e, a, *b)
	})
}

// QueryMut3 iterates over all entities with components of types A, B and C,
// yielding A for mutation.
type QueryMut3[A, B, C any] struct {
	cursor
	a *storage[A]
	b *storage[B]
	c *storage[C]
}

func NewQueryMut3[A, B, C any](w *World, opts ...QueryOption) (*QueryMut3[A, B, C], error) {
	spec := newQuerySpec(w)

	a, err := addRequired[A](&spec)
	if err != nil {
		return nil, err
	}

	b, err := addRequired[B](&spec)
	if err != nil {
		return nil, err
	}

	c, err := addRequired[C](&spec)
	if err != nil {
		return nil, err
	}

	if err := spec.applyOptions(opts); err != nil {
		return nil, err
	}

	q := &QueryMut3[A, B, C]{a: a, b: b, c: c}
	q.cursor = spec.begin(a)

	return q, nil
}

func (q *QueryMut3[A, B, C]) Get() (*A, B, C) {
	a, _ := q.a.valueAt(q.cur.index)
	b, _ := q.b.valueAt(q.cur.index)
	c, _ := q.c.valueAt(q.cur.index)
	return a, *b, *c
}

func (q *QueryMut3[A, B, C]) ForEachParallel(workers int, fn func(e Entity, a *A, b B, c C)) {
	q.forEachParallel(workers, func(e Entity) {
		a, _ := q.a.valueAt(e.index)
		b, _ := q.b.valueAt(e.index)
		c, _ := q.c.valueAt(e.index)
		fn(e, a, *b, *c)
	})
}

// QueryMut4 iterates over all entities with components of types A, B, C and
// D, yielding A for mutation.
type QueryMut4[A, B, C, D any] struct {
	cursor
	a *storage[A]
	b *storage[B]
	c *storage[C]
	d *storage[D]
}

func NewQueryMut4[A, B, C, D any](w *World, opts ...QueryOption) (*QueryMut4[A, B, C, D], error) {
	spec := newQuerySpec(w)

	a, err := addRequired[A](&spec)
	if err != nil {
		return nil, err
	}

	b, err := addRequired[B](&spec)
	if err != nil {
		return nil, err
	}

	c, err := addRequired[C](&spec)
	if err != nil {
		return nil, err
	}

	d, err := addRequired[D](&spec)
	if err != nil {
		return nil, err
	}

	if err := spec.applyOptions(opts); err != nil {
		return nil, err
	}

	q := &QueryMut4[A, B, C, D]{a: a, b: b, c: c, d: d}
	q.cursor = spec.begin(a)

	return q, nil
}

func (q *QueryMut4[A, B, C, D]) Get() (*A, B, C, D) {
	a, _ := q.a.valueAt(q.cur.index)
	b, _ := q.b.valueAt(q.cur.index)
	c, _ := q.c.valueAt(q.cur.index)
	d, _ := q.d.valueAt(q.cur.index)
	return a, *b, *c, *d
}

func (q *QueryMut4[A, B, C, D]) ForEachParallel(workers int, fn func(e Entity, a *A, b B, c C, d D)) {
	q.forEachParallel(workers, func(e Entity) {
		a, _ := q.a.valueAt(e.index)
		b, _ := q.b.valueAt(e.index)
		c, _ := q.c.valueAt(e.index)
		d, _ := q.d.valueAt(e.index)
		fn(e, a, *b, *c, *d)
	})
}
