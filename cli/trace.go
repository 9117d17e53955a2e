package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-runewidth"
	"github.com/peco/liveview"
	"github.com/peco/liveview/line"
	"github.com/pkg/errors"
)

const truncationTail = "..."

func newTracer(out io.Writer, format string, maxWidth int) *tracer {
	return &tracer{format: format, maxWidth: maxWidth, out: out}
}

func (t *tracer) attach(v *liveview.FilteredView[line.Line]) {
	v.OnPropertyChanged(t.property)
	v.OnChanged(t.event)
}

func (t *tracer) property(p liveview.Property) {
	if t.format == FormatYAML {
		t.emitYAML(traceRecord{Kind: "property", Property: string(p)})
		return
	}
	t.emit("property " + string(p))
}

func (t *tracer) event(e liveview.Event[line.Line]) {
	if t.format == FormatYAML {
		r := traceRecord{Kind: "event", Action: e.Action.String()}
		if e.Action != liveview.ActionReset {
			r.Item = e.Item.DisplayString()
		}
		if e.OldIndex >= 0 {
			r.OldIndex = &e.OldIndex
		}
		if e.NewIndex >= 0 {
			r.NewIndex = &e.NewIndex
		}
		t.emitYAML(r)
		return
	}

	switch e.Action {
	case liveview.ActionAdded:
		t.emit(fmt.Sprintf("added %d %s", e.NewIndex, strconv.Quote(e.Item.DisplayString())))
	case liveview.ActionRemoved:
		t.emit(fmt.Sprintf("removed %d %s", e.OldIndex, strconv.Quote(e.Item.DisplayString())))
	case liveview.ActionMoved:
		t.emit(fmt.Sprintf("moved %d->%d %s", e.OldIndex, e.NewIndex, strconv.Quote(e.Item.DisplayString())))
	case liveview.ActionReset:
		t.emit("reset")
	}
}

func (t *tracer) emit(s string) {
	if t.err != nil {
		return
	}
	if t.maxWidth > 0 {
		s = runewidth.Truncate(s, t.maxWidth, truncationTail)
	}
	if _, err := io.WriteString(t.out, s+"\n"); err != nil {
		t.err = errors.Wrap(err, "failed to write trace")
	}
}

func (t *tracer) emitYAML(r traceRecord) {
	if t.err != nil {
		return
	}
	buf, err := yaml.Marshal(r)
	if err != nil {
		t.err = errors.Wrap(err, "failed to encode trace record")
		return
	}
	if _, err := fmt.Fprintf(t.out, "---\n%s", buf); err != nil {
		t.err = errors.Wrap(err, "failed to write trace")
	}
}
