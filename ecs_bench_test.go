package ecs

import "testing"

func benchWorld(n int) *World {
	w := NewWorld(n)

	for i := 0; i < n; i++ {
		e := w.CreateEntity()
		_, _, _ = Set(w, e, Position{X: float64(i)})
		_, _, _ = Set(w, e, Velocity{X: 1})

		if i%2 == 0 {
			_, _, _ = Set(w, e, Health{Current: 100, Max: 100})
		}
	}

	return w
}

func BenchmarkCreateEntity(b *testing.B) {
	w := NewWorld(b.N)

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		w.CreateEntity()
	}
}

func BenchmarkQueryIter(b *testing.B) {
	w := benchWorld(10000)

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		q, _ := NewQuery2[Position, Velocity](w)
		for q.Next() {
			pos, vel := q.Get()
			_ = pos.X + vel.X
		}
	}
}

func BenchmarkQueryMutIter(b *testing.B) {
	w := benchWorld(10000)

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		q, _ := NewQueryMut2[Position, Velocity](w)
		for q.Next() {
			pos, vel := q.Get()
			pos.X += vel.X
		}
	}
}

func BenchmarkQueryParallel(b *testing.B) {
	w := benchWorld(100000)

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		q, _ := NewQueryMut2[Position, Velocity](w)
		q.ForEachParallel(0, func(_ Entity, pos *Position, vel Velocity) {
			pos.X += vel.X
		})
	}
}

func BenchmarkGetComponent(b *testing.B) {
	w := benchWorld(1024)
	e := Entity{index: 512, version: 0}

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		_, _ = Get[Position](w, e)
	}
}
