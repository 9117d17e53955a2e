package script

import (
	"context"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/liveview"
	"github.com/peco/liveview/filter"
	"github.com/peco/liveview/line"
	"github.com/peco/liveview/observable"
	"github.com/pkg/errors"
)

// NewSession creates a Session over list and view. Queries are compiled
// with the current filter of filters.
func NewSession(list *observable.List[line.Line], view *liveview.FilteredView[line.Line], filters *filter.Set, idgen line.IDGenerator) *Session {
	return &Session{
		filters: filters,
		idgen:   idgen,
		list:    list,
		view:    view,
	}
}

// EnableSep makes added lines honor a null separator.
func (s *Session) EnableSep(b bool) *Session {
	s.enableSep = b
	return s
}

// Query returns the query in effect.
func (s *Session) Query() string {
	return s.query
}

// Run applies cmds in order and stops at the first failure or when ctx is
// done.
func (s *Session) Run(ctx context.Context, cmds []Command) error {
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Apply(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Apply performs a single command.
func (s *Session) Apply(cmd Command) error {
	if pdebug.Enabled {
		g := pdebug.Marker("Session.Apply (line %d: %s)", cmd.Line, cmd.Op)
		defer g.End()
	}

	if err := s.apply(cmd); err != nil {
		return errors.Wrapf(err, "line %d: %s", cmd.Line, cmd.Op)
	}
	return nil
}

func (s *Session) apply(cmd Command) error {
	switch cmd.Op {
	case OpAdd:
		s.list.Append(s.newLine(cmd.Text))
	case OpInsert:
		return s.list.Insert(cmd.Index, s.newLine(cmd.Text))
	case OpRemove:
		_, err := s.list.RemoveAt(cmd.Index)
		return err
	case OpDelete:
		for i, l := range s.list.All() {
			if l.Buffer() == cmd.Text {
				_, err := s.list.RemoveAt(i)
				return err
			}
		}
		return errors.Errorf("no line %q", cmd.Text)
	case OpMove:
		return s.list.Move(cmd.Index, cmd.To)
	case OpClear:
		s.list.Clear()
	case OpReset:
		lines := make([]line.Line, len(cmd.Args))
		for i, text := range cmd.Args {
			lines[i] = s.newLine(text)
		}
		s.list.Reset(lines...)
	case OpFilter:
		if err := s.filters.SetCurrentByName(cmd.Text); err != nil {
			return errors.Wrapf(err, "filter %q", cmd.Text)
		}
		return s.SetQuery(s.query)
	case OpQuery:
		return s.SetQuery(cmd.Text)
	case OpUpdate:
		s.view.Update()
	case OpDispose:
		s.view.Dispose()
	default:
		return errors.Errorf("unknown operation %d", cmd.Op)
	}
	return nil
}

// SetQuery compiles q with the current filter and installs it as the
// view's predicate. An invalid query leaves the view untouched.
func (s *Session) SetQuery(q string) error {
	f := s.filters.Current()
	if f == nil {
		return filter.ErrFilterNotFound
	}
	m, err := f.Compile(q)
	if err != nil {
		return err
	}
	s.query = q
	s.view.SetFilter(filter.Lines(m))
	return nil
}

func (s *Session) newLine(text string) line.Line {
	return line.NewRaw(s.idgen.Next(), text, s.enableSep)
}
