package liveview_test

import (
	"cmp"
	"errors"
	"testing"

	"github.com/peco/liveview"
	"github.com/peco/liveview/observable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder[T comparable] struct {
	events  []liveview.Event[T]
	count   int
	indexer int
}

func record[T comparable](v *liveview.FilteredView[T]) *recorder[T] {
	r := &recorder[T]{}
	v.OnChanged(func(e liveview.Event[T]) {
		r.events = append(r.events, e)
	})
	v.OnPropertyChanged(func(p liveview.Property) {
		switch p {
		case liveview.PropertyCount:
			r.count++
		case liveview.PropertyIndexer:
			r.indexer++
		}
	})
	return r
}

func (r *recorder[T]) reset() {
	r.events = nil
	r.count = 0
	r.indexer = 0
}

func (r *recorder[T]) last(t *testing.T) liveview.Event[T] {
	t.Helper()
	require.NotEmpty(t, r.events, "expected at least one event")
	return r.events[len(r.events)-1]
}

func (r *recorder[T]) requireSilent(t *testing.T, fn func()) {
	t.Helper()
	r.reset()
	fn()
	require.Empty(t, r.events, "no events expected")
	require.Zero(t, r.count, "no count-changed signal expected")
	require.Zero(t, r.indexer, "no indexer-changed signal expected")
}

func hide(hidden ...string) liveview.Predicate[string] {
	return func(s string) bool {
		for _, h := range hidden {
			if s == h {
				return false
			}
		}
		return true
	}
}

func TestRelayEventsWithoutFilter(t *testing.T) {
	t.Parallel()

	src := observable.New[string]()
	v := liveview.New[string](src)
	r := record(v)
	defer r.requireSilent(t, func() {
		v.Dispose()
		src.Append("disposed")
	})

	src.Append("first")
	require.Equal(t, liveview.Added("first", 0), r.last(t))
	require.Equal(t, 1, r.count)
	require.Equal(t, 1, r.indexer)

	src.Append("second")
	require.Equal(t, liveview.Added("second", 1), r.last(t))

	src.Append("third")
	require.Equal(t, liveview.Added("third", 2), r.last(t))

	r.requireSilent(t, v.Update)

	r.reset()
	require.NoError(t, src.Move(0, 1))
	require.Equal(t, liveview.Moved("first", 0, 1), r.last(t))
	require.Zero(t, r.count, "a move does not change the count")
	require.Equal(t, 1, r.indexer)
	require.Equal(t, []string{"second", "first", "third"}, v.Items())

	r.reset()
	src.Clear()
	require.Equal(t, liveview.Reset[string](), r.last(t))
	require.Equal(t, 1, r.count)
	require.Equal(t, 1, r.indexer)

	require.NoError(t, src.Insert(0, "1"))
	require.Equal(t, liveview.Added("1", 0), r.last(t))

	require.NoError(t, src.Insert(1, "3"))
	require.Equal(t, liveview.Added("3", 1), r.last(t))

	require.NoError(t, src.Insert(1, "2"))
	require.Equal(t, liveview.Added("2", 1), r.last(t))

	r.reset()
	require.True(t, src.Remove("1"))
	require.Equal(t, liveview.Removed("1", 0), r.last(t))
	require.Equal(t, 1, r.count)
	require.Equal(t, 1, r.indexer)

	_, err := src.RemoveAt(1)
	require.NoError(t, err)
	require.Equal(t, liveview.Removed("3", 1), r.last(t))
	require.Equal(t, []string{"2"}, v.Items())
}

func TestRelayEventsWithFilter(t *testing.T) {
	t.Parallel()

	src := observable.New[string]()
	v := liveview.New[string](src)
	r := record(v)
	defer r.requireSilent(t, func() {
		v.Dispose()
		src.Append("disposed")
	})

	r.requireSilent(t, func() { v.SetFilter(hide("second", "2")) })

	src.Append("first")
	require.Equal(t, liveview.Added("first", 0), r.last(t))
	require.Equal(t, 1, r.count)
	require.Equal(t, 1, r.indexer)

	r.requireSilent(t, func() { src.Append("second") })

	src.Append("third")
	require.Equal(t, liveview.Added("third", 1), r.last(t), "second is hidden")

	r.requireSilent(t, v.Update)
	require.Equal(t, []string{"first", "third"}, v.Items())

	r.reset()
	src.Clear()
	require.Equal(t, liveview.Reset[string](), r.last(t))
	require.Equal(t, 1, r.count)
	require.Equal(t, 1, r.indexer)

	require.NoError(t, src.Insert(0, "1"))
	require.Equal(t, liveview.Added("1", 0), r.last(t))

	require.NoError(t, src.Insert(1, "3"))
	require.Equal(t, liveview.Added("3", 1), r.last(t))

	r.requireSilent(t, func() { require.NoError(t, src.Insert(1, "2")) })
	require.Equal(t, []string{"1", "3"}, v.Items())

	r.reset()
	require.True(t, src.Remove("1"))
	require.Equal(t, liveview.Removed("1", 0), r.last(t))
	require.Equal(t, 1, r.count)
	require.Equal(t, 1, r.indexer)

	_, err := src.RemoveAt(1)
	require.NoError(t, err)
	require.Equal(t, liveview.Removed("3", 0), r.last(t), "index 0 because 2 is hidden")
	require.Empty(t, v.Items())
}

func TestScenarios(t *testing.T) {
	t.Parallel()

	t.Run("A: insert into empty source", func(t *testing.T) {
		t.Parallel()
		src := observable.New[string]()
		v := liveview.New[string](src)
		r := record(v)

		src.Append("first")
		require.Equal(t, []liveview.Event[string]{liveview.Added("first", 0)}, r.events)
		require.Equal(t, 1, r.count)
		require.Equal(t, 1, r.indexer)
	})
	t.Run("B: hidden elements do not count", func(t *testing.T) {
		t.Parallel()
		src := observable.New("first", "second")
		v := liveview.New[string](src, liveview.WithFilter(hide("second")))
		r := record(v)

		src.Append("third")
		require.Equal(t, []liveview.Event[string]{liveview.Added("third", 1)}, r.events)
	})
	t.Run("C: inserting a hidden element is silent", func(t *testing.T) {
		t.Parallel()
		src := observable.New("1", "3")
		v := liveview.New[string](src, liveview.WithFilter(hide("2")))
		r := record(v)

		r.requireSilent(t, func() { require.NoError(t, src.Insert(1, "2")) })
		require.Equal(t, []string{"1", "3"}, v.Items())
	})
	t.Run("D: move", func(t *testing.T) {
		t.Parallel()
		src := observable.New("a", "b")
		v := liveview.New[string](src)
		r := record(v)

		require.NoError(t, src.Move(0, 1))
		require.Equal(t, []liveview.Event[string]{liveview.Moved("a", 0, 1)}, r.events)
		require.Zero(t, r.count)
		require.Equal(t, 1, r.indexer)
	})
	t.Run("E: reset with prior content", func(t *testing.T) {
		t.Parallel()
		src := observable.New("a", "b")
		v := liveview.New[string](src)
		r := record(v)

		src.Clear()
		require.Equal(t, []liveview.Event[string]{liveview.Reset[string]()}, r.events)
		require.Equal(t, 1, r.count)
		require.Equal(t, 1, r.indexer)
		require.Zero(t, v.Len())
	})
}

func TestConstructionIsSilent(t *testing.T) {
	t.Parallel()

	src := observable.New("a", "bb", "c", "dd")
	var events int
	v := liveview.New[string](src, liveview.WithFilter[string](func(s string) bool { return len(s) == 1 }))
	v.OnChanged(func(liveview.Event[string]) { events++ })

	require.Equal(t, []string{"a", "c"}, v.Items())
	require.Zero(t, events)
	require.Equal(t, 1, src.Subscribers(), "one subscription per view")

	w := liveview.New[string](src)
	require.Equal(t, 2, src.Subscribers())
	w.Dispose()
	require.Equal(t, 1, src.Subscribers())
}

func TestMoveWithFilter(t *testing.T) {
	t.Parallel()

	src := observable.New("a", "x", "b", "y", "c")
	v := liveview.New[string](src, liveview.WithFilter(hide("x", "y")))
	r := record(v)

	// a x b y c -> x b y a c
	require.NoError(t, src.Move(0, 3))
	require.Equal(t, []liveview.Event[string]{liveview.Moved("a", 0, 1)}, r.events)
	require.Equal(t, []string{"b", "a", "c"}, v.Items())

	// moving a hidden element is silent
	r.requireSilent(t, func() { require.NoError(t, src.Move(0, 4)) })
	require.Equal(t, []string{"b", "a", "c"}, v.Items())

	// b y a c x -> b a y c x: a changes source position, not view position
	r.reset()
	require.NoError(t, src.Move(2, 1))
	require.Equal(t, []liveview.Event[string]{liveview.Moved("a", 1, 1)}, r.events, "moves that keep the view order still notify")
	require.Zero(t, r.count)
	require.Equal(t, 1, r.indexer)
	require.Equal(t, []string{"b", "a", "c"}, v.Items())
}

func TestDuplicates(t *testing.T) {
	t.Parallel()

	src := observable.New("a", "x", "a")
	v := liveview.New[string](src)
	r := record(v)

	// a x a -> a a x
	require.NoError(t, src.Move(2, 1))
	require.Equal(t, []liveview.Event[string]{liveview.Moved("a", 2, 1)}, r.events)
	require.Equal(t, []string{"a", "a", "x"}, v.Items())

	r.reset()
	_, err := src.RemoveAt(1)
	require.NoError(t, err)
	require.Equal(t, []liveview.Event[string]{liveview.Removed("a", 1)}, r.events)
	require.Equal(t, []string{"a", "x"}, v.Items())
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	threshold := 2
	src := observable.New(1, 2, 3, 4)
	v := liveview.New[int](src, liveview.WithFilter[int](func(n int) bool { return n > threshold }))
	r := record(v)
	require.Equal(t, []int{3, 4}, v.Items())

	r.requireSilent(t, v.Update)

	threshold = 0
	v.Update()
	require.Equal(t, []liveview.Event[int]{liveview.Reset[int]()}, r.events)
	require.Equal(t, 1, r.count)
	require.Equal(t, 1, r.indexer)
	require.Equal(t, []int{1, 2, 3, 4}, v.Items())

	r.requireSilent(t, v.Update)

	// a new predicate that selects the same elements is a no-op
	r.requireSilent(t, func() { v.SetFilter(func(n int) bool { return n < 10 }) })

	r.reset()
	v.SetFilter(nil)
	require.Empty(t, r.events, "nil filter shows everything, which is what is shown already")
	require.Equal(t, []int{1, 2, 3, 4}, v.Items())
}

func TestSort(t *testing.T) {
	t.Parallel()

	src := observable.New("b", "d", "a")
	v := liveview.New[string](src, liveview.WithSort(cmp.Compare[string]))
	r := record(v)
	require.Equal(t, []string{"a", "b", "d"}, v.Items())

	src.Append("c")
	require.Equal(t, []liveview.Event[string]{liveview.Reset[string]()}, r.events, "sorted views translate changes into resets")
	require.Equal(t, []string{"a", "b", "c", "d"}, v.Items())

	r.requireSilent(t, func() { require.NoError(t, src.Move(0, 3)) })

	r.reset()
	v.SetSort(nil)
	require.Equal(t, []string{"d", "a", "c", "b"}, v.Items())
	require.Len(t, r.events, 1)

	r.reset()
	require.NoError(t, src.Move(0, 1))
	require.Equal(t, []liveview.Event[string]{liveview.Moved("d", 0, 1)}, r.events, "unsorted views translate moves again")
}

func TestDispose(t *testing.T) {
	t.Parallel()

	src := observable.New("a", "b")
	v := liveview.New[string](src)
	r := record(v)

	v.Dispose()
	require.True(t, v.Disposed())
	require.Zero(t, src.Subscribers())
	require.NotPanics(t, v.Dispose, "Dispose is idempotent")

	r.requireSilent(t, func() {
		src.Append("c")
		require.NoError(t, src.Move(0, 1))
		src.Clear()
		v.Update()
		v.SetFilter(hide("a"))
		v.SetSort(cmp.Compare[string])
	})
	require.Equal(t, []string{"a", "b"}, v.Items(), "contents stay frozen after disposal")
}

func TestRemoveHandlers(t *testing.T) {
	t.Parallel()

	src := observable.New[int]()
	v := liveview.New[int](src)

	var events, props int
	eid := v.OnChanged(func(liveview.Event[int]) { events++ })
	pid := v.OnPropertyChanged(func(liveview.Property) { props++ })

	src.Append(1)
	v.RemoveChangedHandler(eid)
	v.RemovePropertyHandler(pid)
	src.Append(2)

	require.Equal(t, 1, events)
	require.Equal(t, 2, props)
}

func TestDisposeDuringNotification(t *testing.T) {
	t.Parallel()

	src := observable.New[string]()
	v := liveview.New[string](src)

	var late []string
	v.OnChanged(func(liveview.Event[string]) { v.Dispose() })
	v.OnChanged(func(e liveview.Event[string]) {
		if v.Disposed() {
			late = append(late, e.String())
		}
	})
	src.Append("a")
	require.Empty(t, late, "no handler runs after Dispose returned")

	src = observable.New[string]()
	v = liveview.New[string](src)
	var seen []liveview.Property
	v.OnPropertyChanged(func(p liveview.Property) {
		seen = append(seen, p)
		v.Dispose()
	})
	var events int
	v.OnChanged(func(liveview.Event[string]) { events++ })
	src.Append("a")
	require.Equal(t, []liveview.Property{liveview.PropertyCount}, seen)
	require.Zero(t, events)
}

func TestRemoveHandlerDuringNotification(t *testing.T) {
	t.Parallel()

	src := observable.New[string]()
	v := liveview.New[string](src)

	var second liveview.HandlerID
	var got []liveview.Event[string]
	v.OnChanged(func(liveview.Event[string]) { v.RemoveChangedHandler(second) })
	second = v.OnChanged(func(e liveview.Event[string]) { got = append(got, e) })

	src.Append("a")
	src.Append("b")
	require.Empty(t, got)
}

func TestNotificationOrder(t *testing.T) {
	t.Parallel()

	src := observable.New("a", "b")
	v := liveview.New[string](src)

	var order []string
	v.OnChanged(func(e liveview.Event[string]) { order = append(order, e.Action.String()) })
	v.OnPropertyChanged(func(p liveview.Property) { order = append(order, string(p)) })

	src.Append("c")
	require.NoError(t, src.Move(0, 2))
	require.Equal(t, []string{
		string(liveview.PropertyCount), string(liveview.PropertyIndexer), "Added",
		string(liveview.PropertyIndexer), "Moved",
	}, order)
}

func TestSetFilterPanicKeepsView(t *testing.T) {
	t.Parallel()

	src := observable.New("a", "boom", "c")
	v := liveview.New[string](src, liveview.WithFilter(hide("c")))
	r := record(v)

	boom := func(s string) bool {
		if s == "boom" {
			panic("predicate failed")
		}
		return s != "a"
	}
	require.PanicsWithValue(t, "predicate failed", func() { v.SetFilter(boom) })
	require.Equal(t, []string{"a", "boom"}, v.Items())

	// the old predicate is still in place: "d" is visible, "c" is not
	r.reset()
	src.Append("d")
	src.Append("c")
	require.Equal(t, []liveview.Event[string]{liveview.Added("d", 2)}, r.events)
	v.Update()
	require.Equal(t, []string{"a", "boom", "d"}, v.Items())
}

func TestPredicatePanicPropagates(t *testing.T) {
	t.Parallel()

	boom := func(s string) bool {
		if s == "boom" {
			panic("predicate failed")
		}
		return true
	}

	src := observable.New("a", "boom")
	require.PanicsWithValue(t, "predicate failed", func() {
		liveview.New[string](src, liveview.WithFilter[string](boom))
	})
	require.Zero(t, src.Subscribers(), "a failed construction leaves no subscription")

	src.Clear()
	v := liveview.New[string](src, liveview.WithFilter[string](boom))
	require.PanicsWithValue(t, "predicate failed", func() { src.Append("boom") })

	require.PanicsWithValue(t, "predicate failed", v.Update)
}

// brokenSource reports whatever changes the test hands it, regardless of
// its contents.
type brokenSource struct {
	items []string
	fn    observable.Handler[string]
}

func (s *brokenSource) Len() int                      { return len(s.items) }
func (s *brokenSource) At(i int) string               { return s.items[i] }
func (s *brokenSource) Unsubscribe(observable.Handle) { s.fn = nil }

func (s *brokenSource) Subscribe(fn observable.Handler[string]) observable.Handle {
	s.fn = fn
	return 1
}

func TestContractViolation(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name   string
		change observable.Change[string]
	}{
		{"insert out of range", observable.Change[string]{Action: observable.ActionInsert, Item: "z", Index: 5, OldIndex: -1}},
		{"insert of an element that is not there", observable.Change[string]{Action: observable.ActionInsert, Item: "z", Index: 0, OldIndex: -1}},
		{"remove out of range", observable.Change[string]{Action: observable.ActionRemove, Item: "a", Index: -1, OldIndex: 7}},
		{"move out of range", observable.Change[string]{Action: observable.ActionMove, Item: "a", Index: 9, OldIndex: 0}},
		{"move of an element that is not there", observable.Change[string]{Action: observable.ActionMove, Item: "z", Index: 1, OldIndex: 0}},
		{"unknown action", observable.Change[string]{Action: observable.Action(99), Index: -1, OldIndex: -1}},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			src := &brokenSource{items: []string{"a", "b"}}
			liveview.New[string](src)

			var recovered any
			func() {
				defer func() { recovered = recover() }()
				src.fn(tc.change)
			}()

			err, ok := recovered.(*liveview.ContractError)
			require.True(t, ok, "expected a *ContractError panic, got %#v", recovered)
			assert.True(t, errors.Is(err, liveview.ErrContractViolation))
			assert.Equal(t, tc.change.Action, err.Action)
		})
	}
}

func TestEventApply(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c"}
	testcases := []struct {
		event    liveview.Event[string]
		expected []string
		ok       bool
	}{
		{liveview.Added("x", 1), []string{"a", "x", "b", "c"}, true},
		{liveview.Added("x", 3), []string{"a", "b", "c", "x"}, true},
		{liveview.Added("x", 4), nil, false},
		{liveview.Removed("b", 1), []string{"a", "c"}, true},
		{liveview.Removed("b", 3), nil, false},
		{liveview.Moved("a", 0, 2), []string{"b", "c", "a"}, true},
		{liveview.Moved("c", 2, 0), []string{"c", "a", "b"}, true},
		{liveview.Reset[string](), nil, false},
	}
	for _, tc := range testcases {
		t.Run(tc.event.String(), func(t *testing.T) {
			got, ok := tc.event.Apply(items)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.expected, got)
			require.Equal(t, []string{"a", "b", "c"}, items, "Apply must not modify its input")
		})
	}
}
