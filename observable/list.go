// Package observable implements ordered collections that report every
// structural mutation to their subscribers.
package observable

import (
	"iter"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"
)

var _ Sequence[int] = (*List[int])(nil)

// New creates a new List holding a copy of items.
func New[T comparable](items ...T) *List[T] {
	l := &List[T]{}
	if len(items) > 0 {
		l.items = append([]T(nil), items...)
	}
	return l
}

func insertChange[T any](v T, i int) Change[T] {
	return Change[T]{Action: ActionInsert, Item: v, Index: i, OldIndex: -1}
}

func removeChange[T any](v T, i int) Change[T] {
	return Change[T]{Action: ActionRemove, Item: v, Index: -1, OldIndex: i}
}

func moveChange[T any](v T, from, to int) Change[T] {
	return Change[T]{Action: ActionMove, Item: v, Index: to, OldIndex: from}
}

func resetChange[T any]() Change[T] {
	return Change[T]{Action: ActionReset, Index: -1, OldIndex: -1}
}

// Subscribe registers fn to be called after every mutation.
func (l *List[T]) Subscribe(fn Handler[T]) Handle {
	h := l.callbacks.add(fn)
	if pdebug.Enabled {
		pdebug.Printf("List.Subscribe: handle %d", h)
	}
	return h
}

// Unsubscribe removes the handler registered under h. Unknown handles
// are ignored.
func (l *List[T]) Unsubscribe(h Handle) {
	if pdebug.Enabled {
		pdebug.Printf("List.Unsubscribe: handle %d", h)
	}
	l.callbacks.remove(h)
}

// Subscribers returns the number of active subscriptions.
func (l *List[T]) Subscribers() int {
	return l.callbacks.len()
}

// SetCapacity limits the number of elements the list keeps. When Append
// would grow the list past the capacity, the oldest elements are removed
// first, each with its own remove notification. 0 means unlimited.
func (l *List[T]) SetCapacity(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	l.mutex.Lock()
	l.capacity = capacity
	l.mutex.Unlock()
}

// Capacity returns the configured capacity. 0 means unlimited.
func (l *List[T]) Capacity() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.capacity
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.items)
}

// At returns the element at position i. It panics if i is out of range,
// like indexing a slice would.
func (l *List[T]) At(i int) T {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.items[i]
}

// Items returns a copy of the contents.
func (l *List[T]) Items() []T {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return append([]T(nil), l.items...)
}

// All iterates over a snapshot of the contents.
func (l *List[T]) All() iter.Seq2[int, T] {
	items := l.Items()
	return func(yield func(int, T) bool) {
		for i, v := range items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// IndexOf returns the position of the first element equal to v, or -1.
func (l *List[T]) IndexOf(v T) int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return indexOf(l.items, v)
}

func indexOf[T comparable](items []T, v T) int {
	for i, x := range items {
		if x == v {
			return i
		}
	}
	return -1
}

// Append adds v at the end of the list, trimming the oldest elements
// first if a capacity is set.
func (l *List[T]) Append(v T) {
	if pdebug.Enabled {
		g := pdebug.Marker("List.Append")
		defer g.End()
	}

	for {
		l.mutex.Lock()
		if l.capacity <= 0 || len(l.items) < l.capacity {
			break
		}
		removed := l.items[0]
		l.items = removeAt(l.items, 0)
		l.mutex.Unlock()

		l.callbacks.dispatch(removeChange(removed, 0))
	}

	l.items = append(l.items, v)
	i := len(l.items) - 1
	l.mutex.Unlock()

	l.callbacks.dispatch(insertChange(v, i))
}

// Insert adds v at position i, shifting later elements back.
// i may equal Len() to append.
func (l *List[T]) Insert(i int, v T) error {
	if pdebug.Enabled {
		g := pdebug.Marker("List.Insert %d", i)
		defer g.End()
	}

	l.mutex.Lock()
	if i < 0 || i > len(l.items) {
		n := len(l.items)
		l.mutex.Unlock()
		return errors.Wrapf(ErrIndexOutOfRange, "failed to insert at %d (length %d)", i, n)
	}

	var zero T
	l.items = append(l.items, zero)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	l.mutex.Unlock()

	l.callbacks.dispatch(insertChange(v, i))
	return nil
}

// RemoveAt removes and returns the element at position i.
func (l *List[T]) RemoveAt(i int) (T, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("List.RemoveAt %d", i)
		defer g.End()
	}

	l.mutex.Lock()
	if i < 0 || i >= len(l.items) {
		n := len(l.items)
		l.mutex.Unlock()
		var zero T
		return zero, errors.Wrapf(ErrIndexOutOfRange, "failed to remove at %d (length %d)", i, n)
	}

	v := l.items[i]
	l.items = removeAt(l.items, i)
	l.mutex.Unlock()

	l.callbacks.dispatch(removeChange(v, i))
	return v, nil
}

// Remove removes the first element equal to v. It reports whether an
// element was removed.
func (l *List[T]) Remove(v T) bool {
	l.mutex.Lock()
	i := indexOf(l.items, v)
	if i < 0 {
		l.mutex.Unlock()
		return false
	}
	l.items = removeAt(l.items, i)
	l.mutex.Unlock()

	if pdebug.Enabled {
		pdebug.Printf("List.Remove: removed element at %d", i)
	}
	l.callbacks.dispatch(removeChange(v, i))
	return true
}

// Move relocates the element at position from so that it ends up at
// position to. This is reported as a single move, not as a remove
// followed by an insert.
func (l *List[T]) Move(from, to int) error {
	if pdebug.Enabled {
		g := pdebug.Marker("List.Move %d -> %d", from, to)
		defer g.End()
	}

	l.mutex.Lock()
	n := len(l.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		l.mutex.Unlock()
		return errors.Wrapf(ErrIndexOutOfRange, "failed to move %d to %d (length %d)", from, to, n)
	}

	v := l.items[from]
	switch {
	case from < to:
		copy(l.items[from:to], l.items[from+1:to+1])
	case from > to:
		copy(l.items[to+1:from+1], l.items[to:from])
	}
	l.items[to] = v
	l.mutex.Unlock()

	l.callbacks.dispatch(moveChange(v, from, to))
	return nil
}

// Reset replaces the contents wholesale. When a capacity is set only
// the last Capacity() elements of items are kept.
func (l *List[T]) Reset(items ...T) {
	if pdebug.Enabled {
		g := pdebug.Marker("List.Reset (%d items)", len(items))
		defer g.End()
	}

	l.mutex.Lock()
	if l.capacity > 0 && len(items) > l.capacity {
		items = items[len(items)-l.capacity:]
	}
	l.items = append([]T(nil), items...)
	l.mutex.Unlock()

	l.callbacks.dispatch(resetChange[T]())
}

// Clear removes every element. It is reported as a reset.
func (l *List[T]) Clear() {
	l.Reset()
}

func removeAt[T any](items []T, i int) []T {
	copy(items[i:], items[i+1:])
	var zero T
	items[len(items)-1] = zero
	return items[:len(items)-1]
}
