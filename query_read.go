package ecs

// Read-only queries. All participating storages are borrowed shared, so any
// number of read-only queries may be open or running at the same time. Get
// returns component values, mutation goes through the QueryMut family.
//
// The iteration protocol is the same for every arity:
//
//	q, err := NewQuery2[Position, Velocity](w, Without[Frozen]())
//	if err != nil { ... }
//	for q.Next() {
//	    pos, vel := q.Get()
//	    ...
//	}
//
// Results follow the driving storage's current physical order. The sequence
// is single-pass and not restartable; abandoning it early requires Close.

// Query1 iterates over all entities that have a component of type A.
type Query1[A any] struct {
	cursor
	a *storage[A]
}

func NewQuery1[A any](w *World, opts ...QueryOption) (*Query1[A], error) {
	spec := newQuerySpec(w)

	a, err := addRequired[A](&spec)
	if err != nil {
		return nil, err
	}

	if err := spec.applyOptions(opts); err != nil {
		return nil, err
	}

	q := &Query1[A]{a: a}
	q.cursor = spec.begin(nil)

	return q, nil
}

// Get returns the current entity's component. Only valid after Next returned
// true.
func (q *Query1[A]) Get() A {
	a, _ := q.a.valueAt(q.cur.index)
	return *a
}

// ForEachParallel evaluates the whole query across worker goroutines and
// blocks until they finish. workers <= 0 uses GOMAXPROCS. Must be called on
// a freshly constructed query.
func (q *Query1[A]) ForEachParallel(workers int, fn func(e Entity, a A)) {
	q.forEachParallel(workers, func(e Entity) {
		a, _ := q.a.valueAt(e.index)
		fn(e, *a)
	})
}

// Query2 iterates over all entities that have components of types A and B.
type Query2[A, B any] struct {
	cursor
	a *storage[A]
	b *storage[B]
}

func NewQuery2[A, B any](w *World, opts ...QueryOption) (*Query2[A, B], error) {
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

	q := &Query2[A, B]{a: a, b: b}
	q.cursor = spec.begin(nil)

	return q, nil
}

func (q *Query2[A, B]) Get() (A, B) {
	a, _ := q.a.valueAt(q.cur.index)
	b, _ := q.b.valueAt(q.cur.index)
	return *a, *b
}

func (q *Query2[A, B]) ForEachParallel(workers int, fn func(e Entity, a A, b B)) {
	q.forEachParallel(workers, func(e Entity) {
		a, _ := q.a.valueAt(e.index)
		b, _ := q.b.valueAt(e.index)
		fn(e, *a, *b)
	})
}

// Query3 iterates over all entities that have components of types A, B and C.
type Query3[A, B, C any] struct {
	cursor
	a *storage[A]
	b *storage[B]
	c *storage[C]
}

func NewQuery3[A, B, C any](w *World, opts ...QueryOption) (*Query3[A, B, C], error) {
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

	q := &Query3[A, B, C]{a: a, b: b, c: c}
	q.cursor = spec.begin(nil)

	return q, nil
}

func (q *Query3[A, B, C]) Get() (A, B, C) {
	a, _ := q.a.valueAt(q.cur.index)
	b, _ := q.b.valueAt(q.cur.index)
	c, _ := q.c.valueAt(q.cur.index)
	return *a, *b, *c
}

func (q *Query3[A, B, C]) ForEachParallel(workers int, fn func(e Entity, a A, b B, c C)) {
	q.forEachParallel(workers, func(e Entity) {
		a, _ := q.a.valueAt(e.index)
		b, _ := q.b.valueAt(e.index)
		c, _ := q.c.valueAt(e.index)
		fn(e, *a, *b, *c)
	})
}

// Query4 iterates over all entities that have components of types A, B, C
// and D.
type Query4[A, B, C, D any] struct {
	cursor
	a *storage[A]
	b *storage[B]
	c *storage[C]
	d *storage[D]
}

func NewQuery4[A, B, C, D any](w *World, opts ...QueryOption) (*Query4[A, B, C, D], error) {
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

	q := &Query4[A, B, C, D]{a: a, b: b, c: c, d: d}
	q.cursor = spec.begin(nil)

	return q, nil
}

func (q *Query4[A, B, C, D]) Get() (A, B, C, D) {
	a, _ := q.a.valueAt(q.cur.index)
	b, _ := q.b.valueAt(q.cur.index)
	c, _ := q.c.valueAt(q.cur.index)
	d, _ := q.d.valueAt(q.cur.index)
	return *a, *b, *c, *d
}

func (q *Query4[A, B, C, D]) ForEachParallel(workers int, fn func(e Entity, a A, b B, c C, d D)) {
	q.forEachParallel(workers, func(e Entity) {
		a, _ := q.a.valueAt(e.index)
		b, _ := q.b.valueAt(e.index)
		c, _ := q.c.valueAt(e.index)
		d, _ := q.d.valueAt(e.index)
		fn(e, *a, *b, *c, *d)
	})
}
