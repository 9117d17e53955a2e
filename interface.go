package liveview

import (
	"errors"

	"github.com/peco/liveview/observable"
)

// ErrContractViolation is the cause of every ContractError. A source that
// reports changes which cannot correspond to its own contents leaves the
// view with no way to stay consistent, so the view panics with a
// *ContractError instead of guessing.
var ErrContractViolation = errors.New("source violated the change notification contract")

// Action describes the kind of structural change an Event reports.
type Action int

const (
	ActionAdded   Action = iota + 1 // ActionAdded reports Item inserted at NewIndex
	ActionRemoved                   // ActionRemoved reports Item removed from OldIndex
	ActionMoved                     // ActionMoved reports Item relocated from OldIndex to NewIndex
	ActionReset                     // ActionReset reports that the contents changed wholesale
)

// Event is a structural change notification, expressed in the view's own
// index space. Indices that do not apply to the Action are -1.
type Event[T any] struct {
	Action   Action
	Item     T
	NewIndex int
	OldIndex int
}

// Property names a derived signal raised alongside structural events.
type Property string

const (
	// PropertyCount is raised whenever the number of visible items changes.
	PropertyCount Property = "Count"
	// PropertyIndexer is raised whenever the content at some index
	// changes. It never names a specific index.
	PropertyIndexer Property = "Item[]"
)

// HandlerID identifies a handler registered with OnChanged or
// OnPropertyChanged.
type HandlerID uint64

// Predicate decides whether an element of the source is visible.
type Predicate[T any] func(T) bool

// Option configures a FilteredView at construction time.
type Option[T comparable] func(*FilteredView[T])

// FilteredView is a live, read-only projection of an observable.Sequence
// containing the elements that satisfy a predicate, in source order.
//
// The view is not safe for concurrent use. All of its work happens
// synchronously inside the source's change handler, or inside SetFilter,
// SetSort and Update.
type FilteredView[T comparable] struct {
	cmp       func(a, b T) int
	disposed  bool
	handle    observable.Handle
	onChanged handlers[Event[T]]
	onProp    handlers[Property]
	predicate Predicate[T]
	src       observable.Sequence[T]
	visible   []T
}

// ContractError describes a change reported by the source that does not
// match the source's state.
type ContractError struct {
	Action   observable.Action
	Index    int
	OldIndex int
	Len      int
	Reason   string
}

type handler[E any] struct {
	fn func(E)
	id HandlerID
}

type handlers[E any] struct {
	entries []handler[E]
	nextID  HandlerID
}
