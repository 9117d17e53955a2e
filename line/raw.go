package line

import (
	"strings"
	"sync/atomic"

	"github.com/google/btree"
	"github.com/peco/liveview/internal/util"
)

// NewRaw creates a Raw. With enableSep the first null character splits
// the buffer into the display part and the output part.
func NewRaw(id uint64, v string, enableSep bool) *Raw {
	rl := &Raw{
		id:     id,
		buf:    v,
		sepLoc: -1,
	}

	if enableSep {
		rl.sepLoc = strings.IndexByte(v, '\000')
	}

	display := v
	if rl.sepLoc > -1 {
		display = v[:rl.sepLoc]
	}
	rl.displayString = util.StripANSISequence(display)
	return rl
}

// Less implements btree.Item
func (rl *Raw) Less(b btree.Item) bool {
	return rl.id < b.(Line).ID()
}

func (rl *Raw) ID() uint64 {
	return rl.id
}

func (rl *Raw) Buffer() string {
	return rl.buf
}

func (rl *Raw) DisplayString() string {
	return rl.displayString
}

func (rl *Raw) Output() string {
	if i := rl.sepLoc; i > -1 {
		return rl.buf[i+1:]
	}
	return rl.buf
}

func (rl *Raw) String() string {
	return rl.displayString
}

// Next returns the next id.
func (g *SequentialIDGenerator) Next() uint64 {
	return atomic.AddUint64(&g.seq, 1)
}
