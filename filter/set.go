package filter

import (
	pdebug "github.com/lestrrat-go/pdebug"
)

// NewDefaultSet returns a Set with the built-in filters, IgnoreCase
// first.
func NewDefaultSet() *Set {
	fs := &Set{}
	fs.Add(NewIgnoreCase())
	fs.Add(NewCaseSensitive())
	fs.Add(NewSmartCase())
	fs.Add(NewRegexp())
	fs.Add(NewIRegexp())
	fs.Add(NewFuzzy())
	return fs
}

func (fs *Set) Reset() {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	fs.current = 0
}

func (fs *Set) Size() int {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	return len(fs.filters)
}

func (fs *Set) Add(lf Filter) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	fs.filters = append(fs.filters, lf)
}

// Rotate makes the next filter current, wrapping around.
func (fs *Set) Rotate() {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	if len(fs.filters) == 0 {
		return
	}
	fs.current++
	if fs.current >= len(fs.filters) {
		fs.current = 0
	}
	if pdebug.Enabled {
		pdebug.Printf("Set.Rotate: now filter in effect is %s", fs.filters[fs.current])
	}
}

func (fs *Set) SetCurrentByName(name string) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	for i, f := range fs.filters {
		if f.String() == name {
			fs.current = i
			return nil
		}
	}
	return ErrFilterNotFound
}

func (fs *Set) Index() int {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	return fs.current
}

// Current returns the filter in effect, or nil for an empty Set.
func (fs *Set) Current() Filter {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	if len(fs.filters) == 0 {
		return nil
	}
	return fs.filters[fs.current]
}

// Names lists the filters in rotation order.
func (fs *Set) Names() []string {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	names := make([]string, len(fs.filters))
	for i, f := range fs.filters {
		names[i] = f.String()
	}
	return names
}
