// Package selection keeps the set of lines the user picked, and keeps it
// consistent with a live view of the input.
package selection

import (
	"sync"

	"github.com/google/btree"
	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/liveview"
	"github.com/peco/liveview/line"
)

// Set stores the selected lines, sorted from smallest to largest line
// id.
type Set struct {
	mutex sync.RWMutex
	tree  *btree.BTree
}

// Tracker drops selected lines from a Set when they leave a view.
type Tracker struct {
	id     liveview.HandlerID
	set    *Set
	sticky bool
	view   *liveview.FilteredView[line.Line]
}

// New creates a new empty Set.
func New() *Set {
	s := &Set{}
	s.Reset()
	return s
}

// Add adds a line to the selection. Adding a selected line does nothing.
func (s *Set) Add(l line.Line) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tree.ReplaceOrInsert(l)
}

// Toggle selects l if it is not selected and deselects it otherwise. It
// reports whether l is selected afterwards.
func (s *Set) Toggle(l line.Line) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.tree.Delete(l) != nil {
		return false
	}
	s.tree.ReplaceOrInsert(l)
	return true
}

// Copy copies all selected lines from s into dst.
func (s *Set) Copy(dst *Set) {
	for _, l := range s.Lines() {
		dst.Add(l)
	}
}

func (s *Set) Remove(l line.Line) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tree.Delete(l)
}

// Reset clears the selection.
func (s *Set) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tree = btree.New(32)
}

func (s *Set) Has(x line.Line) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.tree.Has(x)
}

func (s *Set) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.tree.Len()
}

// Ascend calls fn for each selected line in id order until fn returns
// false. fn must not modify s.
func (s *Set) Ascend(fn func(line.Line) bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	s.tree.Ascend(func(it btree.Item) bool {
		l, ok := it.(line.Line)
		if !ok {
			return true
		}
		return fn(l)
	})
}

// Lines returns the selected lines in id order.
func (s *Set) Lines() []line.Line {
	lines := make([]line.Line, 0, s.Len())
	s.Ascend(func(l line.Line) bool {
		lines = append(lines, l)
		return true
	})
	return lines
}

// Track subscribes to v and removes lines from s once v no longer shows
// them. A sticky Tracker keeps the selection as it is, so lines hidden by
// a query stay selected.
func Track(s *Set, v *liveview.FilteredView[line.Line], sticky bool) *Tracker {
	t := &Tracker{
		set:    s,
		sticky: sticky,
		view:   v,
	}
	t.id = v.OnChanged(t.onChanged)
	return t
}

// Close stops tracking.
func (t *Tracker) Close() {
	t.view.RemoveChangedHandler(t.id)
}

func (t *Tracker) onChanged(e liveview.Event[line.Line]) {
	if t.sticky {
		return
	}

	switch e.Action {
	case liveview.ActionRemoved:
		if !t.view.Contains(e.Item) {
			t.set.Remove(e.Item)
		}
	case liveview.ActionReset:
		for _, l := range t.set.Lines() {
			if !t.view.Contains(l) {
				if pdebug.Enabled {
					pdebug.Printf("selection.Tracker: dropping line %d after reset", l.ID())
				}
				t.set.Remove(l)
			}
		}
	}
}
