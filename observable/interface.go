package observable

import (
	"errors"
	"strconv"
	"sync"
)

// ErrIndexOutOfRange is returned by List mutations that are handed a
// position outside of the list.
var ErrIndexOutOfRange = errors.New("specified index is out of range")

// Action describes which structural mutation a Change reports.
type Action int

const (
	ActionInsert Action = iota + 1 // ActionInsert reports a single element inserted at Index
	ActionRemove                   // ActionRemove reports a single element removed from OldIndex
	ActionMove                     // ActionMove reports a single element relocated from OldIndex to Index
	ActionReset                    // ActionReset reports that the contents were replaced wholesale
)

// Change is the notification a Sequence raises for each mutation.
// Indices that do not apply to the Action are -1.
type Change[T any] struct {
	Action   Action
	Item     T
	Index    int
	OldIndex int
}

// Handler receives Changes from a Sequence.
type Handler[T any] func(Change[T])

// Handle identifies a subscription. Handles are never reused by the
// Sequence that issued them.
type Handle uint64

// InvalidHandle is never returned by Subscribe.
const InvalidHandle Handle = 0

// Sequence is the capability a consumer needs from an observable ordered
// collection: indexed reads plus a change subscription. Handlers are
// called synchronously, after the mutation has been applied, once per
// mutation.
type Sequence[T any] interface {
	Len() int
	At(int) T
	Subscribe(Handler[T]) Handle
	Unsubscribe(Handle)
}

// List is an ordered mutable collection that implements Sequence.
// Mutations are serialized with an internal lock, but handlers run after
// the lock is released so they may read the list freely. Callers that
// mutate from several goroutines must serialize themselves if they care
// about the order in which handlers observe the changes.
type List[T comparable] struct {
	capacity  int
	callbacks callbacks[T]
	items     []T
	mutex     sync.RWMutex
}

type callback[T any] struct {
	fn     Handler[T]
	handle Handle
}

// callbacks is a handle based registry of Handlers.
type callbacks[T any] struct {
	entries    []callback[T]
	mutex      sync.Mutex
	nextHandle Handle
}

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "Insert"
	case ActionRemove:
		return "Remove"
	case ActionMove:
		return "Move"
	case ActionReset:
		return "Reset"
	default:
		return "Action(" + strconv.Itoa(int(a)) + ")"
	}
}
