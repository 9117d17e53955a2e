// Package liveview implements a filtered, live, read-only view over an
// observable ordered collection.
//
// A FilteredView keeps the subset of its source that satisfies a
// predicate, updates it incrementally as the source changes, and
// republishes each change as an Event in its own index space, together
// with the derived PropertyCount and PropertyIndexer signals.
package liveview

import (
	"iter"
	"slices"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/liveview/observable"
)

func acceptAll[T any](T) bool { return true }

// WithFilter sets the initial predicate.
func WithFilter[T comparable](p Predicate[T]) Option[T] {
	return func(v *FilteredView[T]) {
		if p != nil {
			v.predicate = p
		}
	}
}

// WithSort sets the initial sort order. See SetSort.
func WithSort[T comparable](cmp func(a, b T) int) Option[T] {
	return func(v *FilteredView[T]) {
		v.cmp = cmp
	}
}

// New creates a view over src and subscribes to its changes. The initial
// contents are computed by scanning src once; no event is raised for them.
// If the predicate panics, New panics and nothing is subscribed.
func New[T comparable](src observable.Sequence[T], options ...Option[T]) *FilteredView[T] {
	if pdebug.Enabled {
		g := pdebug.Marker("liveview.New")
		defer g.End()
	}

	v := &FilteredView[T]{
		predicate: acceptAll[T],
		src:       src,
	}
	for _, option := range options {
		option(v)
	}
	v.visible = v.compute(v.predicate, v.cmp)
	v.handle = src.Subscribe(v.onSourceChanged)
	return v
}

// OnChanged registers fn to receive structural change events. For each
// change, property handlers run first (PropertyCount when the count
// changed, then PropertyIndexer) and change handlers run last, so a
// change handler sees derived state that is already up to date. Handlers
// run in registration order.
func (v *FilteredView[T]) OnChanged(fn func(Event[T])) HandlerID {
	return v.onChanged.add(fn)
}

// RemoveChangedHandler unregisters a handler added with OnChanged.
func (v *FilteredView[T]) RemoveChangedHandler(id HandlerID) {
	v.onChanged.remove(id)
}

// OnPropertyChanged registers fn to receive derived signals. They are
// raised before the event describing the same change; see OnChanged.
func (v *FilteredView[T]) OnPropertyChanged(fn func(Property)) HandlerID {
	return v.onProp.add(fn)
}

// RemovePropertyHandler unregisters a handler added with OnPropertyChanged.
func (v *FilteredView[T]) RemovePropertyHandler(id HandlerID) {
	v.onProp.remove(id)
}

// Len returns the number of visible items.
func (v *FilteredView[T]) Len() int {
	return len(v.visible)
}

// At returns the visible item at index i. It panics if i is out of range.
func (v *FilteredView[T]) At(i int) T {
	return v.visible[i]
}

// Items returns a copy of the visible items.
func (v *FilteredView[T]) Items() []T {
	return slices.Clone(v.visible)
}

// All iterates over the visible items.
func (v *FilteredView[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, item := range v.visible {
			if !yield(i, item) {
				return
			}
		}
	}
}

// IndexOf returns the view index of the first visible item equal to
// item, or -1.
func (v *FilteredView[T]) IndexOf(item T) int {
	return slices.Index(v.visible, item)
}

// Contains reports whether item is visible.
func (v *FilteredView[T]) Contains(item T) bool {
	return v.IndexOf(item) >= 0
}

// Disposed reports whether Dispose has been called.
func (v *FilteredView[T]) Disposed() bool {
	return v.disposed
}

// SetFilter replaces the predicate and re-evaluates the view as Update
// does. A nil predicate shows every element. After Dispose it does
// nothing.
func (v *FilteredView[T]) SetFilter(p Predicate[T]) {
	if v.disposed {
		return
	}
	if p == nil {
		p = acceptAll[T]
	}
	v.commit(p, v.cmp)
}

// SetSort orders the visible items with cmp instead of source order and
// re-evaluates the view as Update does. While a sort order is set, every
// source change is handled as an Update, because source positions no
// longer say anything about view positions. A nil cmp restores source
// order.
func (v *FilteredView[T]) SetSort(cmp func(a, b T) int) {
	if v.disposed {
		return
	}
	v.commit(v.predicate, cmp)
}

// Update recomputes the visible items from the source. When the result
// is identical to the current contents nothing is raised, so it is safe
// to call whenever state the predicate depends on might have changed.
// Otherwise a single Reset is raised.
func (v *FilteredView[T]) Update() {
	if v.disposed {
		return
	}
	if pdebug.Enabled {
		g := pdebug.Marker("FilteredView.Update")
		defer g.End()
	}

	v.commit(v.predicate, v.cmp)
}

// commit recomputes the visible items with p and cmp and installs all
// three together, so a predicate that panics leaves the view as it was.
func (v *FilteredView[T]) commit(p Predicate[T], cmp func(a, b T) int) {
	next := v.compute(p, cmp)
	v.predicate = p
	v.cmp = cmp
	if slices.Equal(next, v.visible) {
		if pdebug.Enabled {
			pdebug.Printf("FilteredView.Update: contents unchanged (%d items)", len(next))
		}
		return
	}
	v.visible = next
	v.raise(Reset[T](), true)
}

// Dispose unsubscribes from the source. Afterwards the view raises
// nothing, never reads the source again, and keeps its last contents.
// Calling Dispose more than once is harmless.
func (v *FilteredView[T]) Dispose() {
	if v.disposed {
		return
	}
	if pdebug.Enabled {
		pdebug.Printf("FilteredView.Dispose: unsubscribing handle %d", v.handle)
	}
	v.disposed = true
	v.src.Unsubscribe(v.handle)
	v.src = nil
	v.onChanged.clear()
	v.onProp.clear()
}

func (v *FilteredView[T]) compute(p Predicate[T], cmp func(a, b T) int) []T {
	n := v.src.Len()
	visible := make([]T, 0, n)
	for i := 0; i < n; i++ {
		if item := v.src.At(i); p(item) {
			visible = append(visible, item)
		}
	}
	if cmp != nil {
		slices.SortStableFunc(visible, cmp)
	}
	return visible
}

// countVisible returns how many of the given source positions hold an
// element that satisfies the predicate.
func (v *FilteredView[T]) countVisible(positions iter.Seq[int]) int {
	var n int
	for i := range positions {
		if v.predicate(v.src.At(i)) {
			n++
		}
	}
	return n
}

// prefix yields the source positions [0, end), skipping skip.
func prefix(end, skip int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < end; i++ {
			if i == skip {
				end++
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}

func (v *FilteredView[T]) raise(e Event[T], countChanged bool) {
	if pdebug.Enabled {
		pdebug.Printf("FilteredView: raising %s (count changed: %t)", e, countChanged)
	}
	// a handler may dispose the view; nothing is raised after that
	if countChanged {
		v.onProp.fire(PropertyCount)
	}
	if v.disposed {
		return
	}
	v.onProp.fire(PropertyIndexer)
	if v.disposed {
		return
	}
	v.onChanged.fire(e)
}

func (v *FilteredView[T]) onSourceChanged(c observable.Change[T]) {
	if v.disposed {
		return
	}
	if pdebug.Enabled {
		g := pdebug.Marker("FilteredView.onSourceChanged (%s)", c.Action)
		defer g.End()
	}

	if c.Action == observable.ActionReset {
		v.onReset()
		return
	}

	if v.cmp != nil {
		v.Update()
		return
	}

	switch c.Action {
	case observable.ActionInsert:
		v.onInsert(c)
	case observable.ActionRemove:
		v.onRemove(c)
	case observable.ActionMove:
		v.onMove(c)
	default:
		panic(contractViolation(c, v.src.Len(), "unknown action"))
	}
}

func (v *FilteredView[T]) onInsert(c observable.Change[T]) {
	n := v.src.Len()
	if c.Index < 0 || c.Index >= n {
		panic(contractViolation(c, n, "insert position out of range"))
	}
	if v.src.At(c.Index) != c.Item {
		panic(contractViolation(c, n, "inserted element is not at its position"))
	}

	if !v.predicate(c.Item) {
		return
	}

	i := v.countVisible(prefix(c.Index, -1))
	// the predicate may have started accepting elements that are not
	// tracked yet, if Update was not called after it changed
	i = min(i, len(v.visible))

	v.visible = slices.Insert(v.visible, i, c.Item)
	v.raise(Added(c.Item, i), true)
}

func (v *FilteredView[T]) onRemove(c observable.Change[T]) {
	n := v.src.Len()
	if c.OldIndex < 0 || c.OldIndex > n {
		panic(contractViolation(c, n, "remove position out of range"))
	}

	i := v.locate(c.Item, func() int {
		// the source positions before the removed one did not move
		return v.countVisible(prefix(c.OldIndex, -1))
	})
	if i < 0 {
		return
	}

	v.visible = slices.Delete(v.visible, i, i+1)
	v.raise(Removed(c.Item, i), true)
}

func (v *FilteredView[T]) onMove(c observable.Change[T]) {
	n := v.src.Len()
	if c.OldIndex < 0 || c.OldIndex >= n || c.Index < 0 || c.Index >= n {
		panic(contractViolation(c, n, "move position out of range"))
	}
	if v.src.At(c.Index) != c.Item {
		panic(contractViolation(c, n, "moved element is not at its destination"))
	}

	if !v.predicate(c.Item) {
		return
	}

	oldIndex := v.locate(c.Item, func() int {
		// before the move the element sat at OldIndex, and the other
		// elements were in their current relative order
		return v.countVisible(prefix(c.OldIndex, c.Index))
	})
	if oldIndex < 0 {
		// visible under the current predicate but never tracked: the
		// predicate changed without an Update
		v.Update()
		return
	}

	newIndex := v.countVisible(prefix(c.Index, -1))
	newIndex = min(newIndex, len(v.visible)-1)

	v.visible = move(v.visible, oldIndex, newIndex)
	v.raise(Moved(c.Item, oldIndex, newIndex), false)
}

func (v *FilteredView[T]) onReset() {
	v.visible = v.compute(v.predicate, v.cmp)
	v.raise(Reset[T](), true)
}

// locate finds the view index of item. hint computes where item is
// expected to be from source positions, which tells equal elements
// apart; when the hint does not hold the visible items are scanned.
func (v *FilteredView[T]) locate(item T, hint func() int) int {
	if len(v.visible) == 0 {
		return -1
	}
	if slices.Index(v.visible, item) < 0 {
		return -1
	}
	if i := hint(); i < len(v.visible) && v.visible[i] == item {
		return i
	}
	return slices.Index(v.visible, item)
}

func move[T any](items []T, from, to int) []T {
	item := items[from]
	switch {
	case from < to:
		copy(items[from:to], items[from+1:to+1])
	case from > to:
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = item
	return items
}
