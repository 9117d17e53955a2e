// Package query holds the text the user types at the prompt, and the
// caret position within it.
package query

import (
	"sync"
	"unicode"
)

// Text is an editable query line. Positions count runes.
type Text struct {
	caret int
	mutex sync.Mutex
	query []rune
}

// Set replaces the query and moves the caret to its end.
func (q *Text) Set(s string) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.query = []rune(s)
	q.caret = len(q.query)
}

func (q *Text) Reset() {
	q.Set("")
}

func (q *Text) String() string {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return string(q.query)
}

func (q *Text) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.query)
}

// Caret returns the caret position.
func (q *Text) Caret() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.caret
}

// MoveCaret moves the caret by diff runes, stopping at either end.
func (q *Text) MoveCaret(diff int) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.caret = max(0, min(len(q.query), q.caret+diff))
}

func (q *Text) CaretToStart() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.caret = 0
}

func (q *Text) CaretToEnd() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.caret = len(q.query)
}

// Insert inserts ch at the caret and moves the caret past it.
func (q *Text) Insert(ch rune) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.query = append(q.query, 0)
	copy(q.query[q.caret+1:], q.query[q.caret:])
	q.query[q.caret] = ch
	q.caret++
}

// DeleteBackward deletes the rune before the caret. It reports whether
// the query changed.
func (q *Text) DeleteBackward() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.caret == 0 {
		return false
	}
	q.deleteRange(q.caret-1, q.caret)
	return true
}

// DeleteForward deletes the rune under the caret.
func (q *Text) DeleteForward() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.caret >= len(q.query) {
		return false
	}
	q.deleteRange(q.caret, q.caret+1)
	return true
}

// DeleteToEnd deletes everything from the caret on.
func (q *Text) DeleteToEnd() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.caret >= len(q.query) {
		return false
	}
	q.query = q.query[:q.caret]
	return true
}

// DeleteWordBackward deletes the word before the caret along with the
// spaces that follow it.
func (q *Text) DeleteWordBackward() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	start := q.caret
	for start > 0 && unicode.IsSpace(q.query[start-1]) {
		start--
	}
	for start > 0 && !unicode.IsSpace(q.query[start-1]) {
		start--
	}
	if start == q.caret {
		return false
	}
	q.deleteRange(start, q.caret)
	return true
}

// deleteRange deletes [start, end) and leaves the caret at start. The
// caller holds the lock.
func (q *Text) deleteRange(start, end int) {
	copy(q.query[start:], q.query[end:])
	q.query = q.query[:len(q.query)-(end-start)]
	q.caret = start
}
