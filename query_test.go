package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collectQuery1[A any](t *testing.T, w *World, opts ...QueryOption) map[Entity]A {
	t.Helper()

	q, err := NewQuery1[A](w, opts...)
	require.NoError(t, err)

	results := map[Entity]A{}
	for q.Next() {
		results[q.Entity()] = q.Get()
	}

	return results
}

func TestQueryRequired(t *testing.T) {
	w := NewWorld(16)

	e1 := w.CreateEntity()
	_, _, _ = Set(w, e1, Position{X: 1})
	_, _, _ = Set(w, e1, Velocity{X: 10})

	e2 := w.CreateEntity()
	_, _, _ = Set(w, e2, Position{X: 2})

	e3 := w.CreateEntity()
	_, _, _ = Set(w, e3, Velocity{X: 30})

	q, err := NewQuery2[Position, Velocity](w)
	require.NoError(t, err)

	matched := map[Entity][2]float64{}
	for q.Next() {
		pos, vel := q.Get()
		matched[q.Entity()] = [2]float64{pos.X, vel.X}
	}

	require.Equal(t, map[Entity][2]float64{e1: {1, 10}}, matched)
}

func TestQueryExclude(t *testing.T) {
	w := NewWorld(16)

	// E1:{A,B}, E2:{A,B,C}, E3:{A} with C excluded must yield exactly E1
	e1 := w.CreateEntity()
	_, _, _ = Set(w, e1, Position{})
	_, _, _ = Set(w, e1, Velocity{})

	e2 := w.CreateEntity()
	_, _, _ = Set(w, e2, Position{})
	_, _, _ = Set(w, e2, Velocity{})
	_, _, _ = Set(w, e2, Frozen{})

	e3 := w.CreateEntity()
	_, _, _ = Set(w, e3, Position{})

	q, err := NewQuery2[Position, Velocity](w, Without[Frozen]())
	require.NoError(t, err)

	var matched []Entity
	for q.Next() {
		matched = append(matched, q.Entity())
	}

	require.Equal(t, []Entity{e1}, matched)
}

func TestQueryOptional(t *testing.T) {
	w := NewWorld(16)

	e1 := w.CreateEntity()
	_, _, _ = Set(w, e1, Position{})
	_, _, _ = Set(w, e1, Health{Current: 42})

	e2 := w.CreateEntity()
	_, _, _ = Set(w, e2, Position{})

	var health Opt[Health]
	q, err := NewQuery1[Position](w, &health)
	require.NoError(t, err)

	rows := 0
	for q.Next() {
		rows++

		hp, ok := health.Get(q.Entity())
		switch q.Entity() {
		case e1:
			require.True(t, ok)
			require.Equal(t, 42, hp.Current)
		case e2:
			require.False(t, ok)
			require.Zero(t, hp)
		default:
			t.Fatalf("unexpected entity %v", q.Entity())
		}
	}

	require.Equal(t, 2, rows)
}

func TestQueryUnregisteredTypeFailsFast(t *testing.T) {
	w := NewWorld(16)

	e := w.CreateEntity()
	_, _, _ = Set(w, e, Position{})

	t.Run("required", func(t *testing.T) {
		_, err := NewQuery2[Position, Velocity](w)
		require.ErrorIs(t, err, ErrTypeNotRegistered)
	})

	t.Run("excluded", func(t *testing.T) {
		_, err := NewQuery1[Position](w, Without[Velocity]())
		require.ErrorIs(t, err, ErrTypeNotRegistered)
	})

	t.Run("optional", func(t *testing.T) {
		var vel Opt[Velocity]
		_, err := NewQuery1[Position](w, &vel)
		require.ErrorIs(t, err, ErrTypeNotRegistered)
	})
}

func TestQueryValidation(t *testing.T) {
	w := NewWorld(16)

	e := w.CreateEntity()
	_, _, _ = Set(w, e, Position{})
	_, _, _ = Set(w, e, Velocity{})

	t.Run("duplicate required type", func(t *testing.T) {
		_, err := NewQuery2[Position, Position](w)
		require.Error(t, err)
	})

	t.Run("required and excluded", func(t *testing.T) {
		_, err := NewQuery1[Position](w, Without[Position]())
		require.Error(t, err)
	})

	t.Run("optional and excluded", func(t *testing.T) {
		var vel Opt[Velocity]
		_, err := NewQuery1[Position](w, &vel, Without[Velocity]())
		require.Error(t, err)
	})
}

func TestQueryMut(t *testing.T) {
	w := NewWorld(16)

	for i := 0; i < 10; i++ {
		e := w.CreateEntity()
		_, _, _ = Set(w, e, Position{})
		_, _, _ = Set(w, e, Velocity{X: float64(i)})
	}

	q, err := NewQueryMut2[Position, Velocity](w)
	require.NoError(t, err)

	for q.Next() {
		pos, vel := q.Get()
		pos.X += vel.X
	}

	total := 0.0
	for _, pos := range collectQuery1[Position](t, w) {
		total += pos.X
	}

	require.Equal(t, 45.0, total)
}

func TestQueryBorrowDiscipline(t *testing.T) {
	w := NewWorld(16)

	e := w.CreateEntity()
	_, _, _ = Set(w, e, Position{})
	_, _, _ = Set(w, e, Velocity{})

	t.Run("two read queries may coexist", func(t *testing.T) {
		q1, err := NewQuery1[Position](w)
		require.NoError(t, err)
		defer q1.Close()

		q2, err := NewQuery1[Position](w)
		require.NoError(t, err)
		defer q2.Close()
	})

	t.Run("two mutable queries over the same type panic", func(t *testing.T) {
		q1, err := NewQueryMut1[Position](w)
		require.NoError(t, err)
		defer q1.Close()

		require.Panics(t, func() {
			_, _ = NewQueryMut1[Position](w)
		})
	})

	t.Run("read query conflicts with open mutable query", func(t *testing.T) {
		q1, err := NewQueryMut1[Position](w)
		require.NoError(t, err)
		defer q1.Close()

		require.Panics(t, func() {
			_, _ = NewQuery1[Position](w)
		})
	})

	t.Run("mutating a type another query reads panics", func(t *testing.T) {
		q1, err := NewQuery2[Position, Velocity](w)
		require.NoError(t, err)
		defer q1.Close()

		require.Panics(t, func() {
			_, _ = NewQueryMut1[Velocity](w)
		})
	})

	t.Run("conflict during construction releases earlier borrows", func(t *testing.T) {
		q1, err := NewQueryMut1[Velocity](w)
		require.NoError(t, err)

		// acquires the Position read first, then panics on Velocity
		require.Panics(t, func() {
			_, _ = NewQuery2[Position, Velocity](w)
		})
		q1.Close()

		q2, err := NewQueryMut1[Position](w)
		require.NoError(t, err)
		q2.Close()

		require.Equal(t, int32(0), w.openQueries.Load())
	})

	t.Run("borrows are released on exhaustion", func(t *testing.T) {
		q1, err := NewQueryMut1[Position](w)
		require.NoError(t, err)

		for q1.Next() {
		}

		q2, err := NewQueryMut1[Position](w)
		require.NoError(t, err)
		q2.Close()
	})
}

func TestQueryDrivesSmallestStorage(t *testing.T) {
	w := NewWorld(64)

	var small Entity
	for i := 0; i < 32; i++ {
		e := w.CreateEntity()
		_, _, _ = Set(w, e, Position{X: float64(i)})

		if i == 7 {
			_, _, _ = Set(w, e, Health{Current: 1})
			small = e
		}
	}

	q, err := NewQuery2[Position, Health](w)
	require.NoError(t, err)

	// the Health storage has a single entry, so iteration must visit exactly
	// one candidate regardless of the Position storage size
	require.Len(t, q.entities, 1)

	require.True(t, q.Next())
	require.Equal(t, small, q.Entity())
	require.False(t, q.Next())
}

func TestQueryCloseIsIdempotent(t *testing.T) {
	w := NewWorld(16)

	e := w.CreateEntity()
	_, _, _ = Set(w, e, Position{})

	q, err := NewQuery1[Position](w)
	require.NoError(t, err)

	q.Close()
	q.Close()

	require.False(t, q.Next())
	require.Equal(t, int32(0), w.openQueries.Load())
}

func TestQueryOrderFollowsStorage(t *testing.T) {
	w := NewWorld(16)

	var created []Entity
	for i := 0; i < 5; i++ {
		e := w.CreateEntity()
		_, _, _ = Set(w, e, Position{X: float64(i)})
		created = append(created, e)
	}

	// swap-remove moves the last entry into the hole
	_, ok := Remove[Position](w, created[1])
	require.True(t, ok)

	q, err := NewQuery1[Position](w)
	require.NoError(t, err)

	var order []Entity
	for q.Next() {
		order = append(order, q.Entity())
	}

	require.Equal(t, []Entity{created[0], created[4], created[2], created[3]}, order)
}
