package liveview

import (
	"fmt"

	"github.com/peco/liveview/observable"
)

// Added creates the event for item inserted at index.
func Added[T any](item T, index int) Event[T] {
	return Event[T]{Action: ActionAdded, Item: item, NewIndex: index, OldIndex: -1}
}

// Removed creates the event for item removed from index.
func Removed[T any](item T, index int) Event[T] {
	return Event[T]{Action: ActionRemoved, Item: item, NewIndex: -1, OldIndex: index}
}

// Moved creates the event for item relocated from oldIndex to newIndex.
func Moved[T any](item T, oldIndex, newIndex int) Event[T] {
	return Event[T]{Action: ActionMoved, Item: item, NewIndex: newIndex, OldIndex: oldIndex}
}

// Reset creates the event for a wholesale change of contents.
func Reset[T any]() Event[T] {
	return Event[T]{Action: ActionReset, NewIndex: -1, OldIndex: -1}
}

func (a Action) String() string {
	switch a {
	case ActionAdded:
		return "Added"
	case ActionRemoved:
		return "Removed"
	case ActionMoved:
		return "Moved"
	case ActionReset:
		return "Reset"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

func (e Event[T]) String() string {
	switch e.Action {
	case ActionAdded:
		return fmt.Sprintf("Added(%v, %d)", e.Item, e.NewIndex)
	case ActionRemoved:
		return fmt.Sprintf("Removed(%v, %d)", e.Item, e.OldIndex)
	case ActionMoved:
		return fmt.Sprintf("Moved(%v, %d, %d)", e.Item, e.OldIndex, e.NewIndex)
	default:
		return e.Action.String() + "()"
	}
}

// Apply returns the result of applying e to items. A Reset cannot be
// applied without the new contents, so it returns ok == false.
func (e Event[T]) Apply(items []T) (result []T, ok bool) {
	result = append([]T(nil), items...)
	switch e.Action {
	case ActionAdded:
		if e.NewIndex < 0 || e.NewIndex > len(result) {
			return nil, false
		}
		var zero T
		result = append(result, zero)
		copy(result[e.NewIndex+1:], result[e.NewIndex:])
		result[e.NewIndex] = e.Item
		return result, true
	case ActionRemoved:
		if e.OldIndex < 0 || e.OldIndex >= len(result) {
			return nil, false
		}
		return append(result[:e.OldIndex], result[e.OldIndex+1:]...), true
	case ActionMoved:
		if e.OldIndex < 0 || e.OldIndex >= len(result) || e.NewIndex < 0 || e.NewIndex >= len(result) {
			return nil, false
		}
		return move(result, e.OldIndex, e.NewIndex), true
	default:
		return nil, false
	}
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s change (index %d, old index %d) against source of length %d: %s",
		ErrContractViolation, e.Action, e.Index, e.OldIndex, e.Len, e.Reason)
}

func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}

func contractViolation[T any](c observable.Change[T], n int, reason string) *ContractError {
	return &ContractError{
		Action:   c.Action,
		Index:    c.Index,
		OldIndex: c.OldIndex,
		Len:      n,
		Reason:   reason,
	}
}

func (h *handlers[E]) add(fn func(E)) HandlerID {
	if fn == nil {
		return 0
	}
	h.nextID++
	h.entries = append(h.entries, handler[E]{fn: fn, id: h.nextID})
	return h.nextID
}

func (h *handlers[E]) remove(id HandlerID) {
	for i := range h.entries {
		if h.entries[i].id == id {
			h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
			return
		}
	}
}

func (h *handlers[E]) clear() {
	h.entries = nil
}

// fire calls every registered handler with e. Handlers may add or remove
// handlers; one removed during fire is not called afterwards.
func (h *handlers[E]) fire(e E) {
	ids := make([]HandlerID, len(h.entries))
	for i, entry := range h.entries {
		ids[i] = entry.id
	}
	for _, id := range ids {
		if fn := h.lookup(id); fn != nil {
			fn(e)
		}
	}
}

func (h *handlers[E]) lookup(id HandlerID) func(E) {
	for _, entry := range h.entries {
		if entry.id == id {
			return entry.fn
		}
	}
	return nil
}
