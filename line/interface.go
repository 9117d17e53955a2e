package line

import "github.com/google/btree"

// IDGenerator hands out the ids that order lines. Ids must increase in
// the order lines are read.
type IDGenerator interface {
	Next() uint64
}

// Line is an element of the input as stored in the source list. Lines
// are compared by identity, so two reads of the same text are distinct
// elements.
type Line interface {
	btree.Item

	ID() uint64

	// Buffer returns the line as it was read, including any separator
	Buffer() string

	// DisplayString returns the text that is shown and matched against
	// the query. With a null separator, only the part before it.
	DisplayString() string

	// Output returns the text that is emitted when the line is selected.
	// With a null separator, only the part after it.
	Output() string
}

// Raw is a line as read from the input.
type Raw struct {
	id            uint64
	buf           string
	sepLoc        int
	displayString string
}

// SequentialIDGenerator counts up from 1. It is safe for concurrent use.
type SequentialIDGenerator struct {
	seq uint64
}
