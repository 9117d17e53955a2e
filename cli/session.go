package cli

import (
	"context"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/liveview/config"
	"github.com/peco/liveview/filter"
	"github.com/peco/liveview/hub"
	"github.com/peco/liveview/line"
	"github.com/peco/liveview/ui"
)

// loop serves the hub until the session is done or ctx is.
func (s *session) loop(ctx context.Context) error {
	if pdebug.Enabled {
		g := pdebug.Marker("session.loop")
		defer g.End()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-s.hub.LineCh():
			s.appendLine(p)
			// redraw once the burst of input is consumed
			if len(s.hub.LineCh()) > 0 {
				continue
			}
		case p := <-s.hub.QueryCh():
			s.applyQuery(p.Data())
			p.Done()
		case p := <-s.hub.StatusMsgCh():
			if s.layout != nil {
				s.layout.PrintStatus(p.Data().Message(), p.Data().Delay())
			}
			p.Done()
		case p := <-s.hub.CommandCh():
			if p.Data() == hub.CommandEndOfInput {
				// select does not order channels, so lines sent before the
				// end of input may still be buffered
				s.drainLines()
			}
			err := s.command(p.Data())
			p.Done()
			if err != nil || s.done {
				return err
			}
		}
		s.draw()
	}
}

func (s *session) appendLine(p *hub.Payload[string]) {
	s.list.Append(line.NewRaw(s.cli.idgen.Next(), p.Data(), s.cli.options.OptEnableNullSep))
	p.Done()
}

// drainLines appends every line already waiting in the hub.
func (s *session) drainLines() {
	for {
		select {
		case p := <-s.hub.LineCh():
			s.appendLine(p)
		default:
			return
		}
	}
}

// command performs c. It sets done when the session is over.
func (s *session) command(c hub.Command) error {
	if pdebug.Enabled {
		pdebug.Printf("session.command: %s", c)
	}

	switch c {
	case hub.CommandEndOfInput:
		if s.layout == nil {
			s.result = s.view.Items()
			s.done = true
		}
	case hub.CommandRotateFilter:
		s.cli.filters.Rotate()
		s.applyQuery(s.query.String())
		s.status("filter: " + s.filterName())
	case hub.CommandCursorUp:
		s.moveCursor(-1)
	case hub.CommandCursorDown:
		s.moveCursor(1)
	case hub.CommandToggleSelection:
		if s.layout == nil {
			return nil
		}
		if l, ok := s.layout.List().Current(); ok {
			s.sel.Toggle(l)
			s.moveCursor(1)
		}
	case hub.CommandFinish:
		// the last keystrokes may still be waiting for the debounce
		s.applyQuery(s.query.String())
		s.result = s.selected()
		s.done = true
	case hub.CommandCancel:
		s.done = true
		if s.cli.config.OnCancel == config.OnCancelError {
			return errCanceled
		}
	case hub.CommandRedraw:
	}
	return nil
}

// selected returns the selected lines in view order, or the line under
// the cursor when nothing is selected.
func (s *session) selected() []line.Line {
	if s.sel.Len() > 0 {
		lines := make([]line.Line, 0, s.sel.Len())
		for _, l := range s.view.All() {
			if s.sel.Has(l) {
				lines = append(lines, l)
			}
		}
		// sticky selections may no longer be visible
		if len(lines) < s.sel.Len() {
			return s.sel.Lines()
		}
		return lines
	}
	if s.layout != nil {
		if l, ok := s.layout.List().Current(); ok {
			return []line.Line{l}
		}
	}
	return nil
}

func (s *session) moveCursor(diff int) {
	if s.layout != nil {
		s.layout.List().MoveCursor(diff)
	}
}

// setQuery compiles q with the current filter and installs it.
func (s *session) setQuery(q string) error {
	f := s.cli.filters.Current()
	if f == nil {
		return filter.ErrFilterNotFound
	}
	m, err := f.Compile(q)
	if err != nil {
		return err
	}
	s.view.SetFilter(filter.Lines(m))
	return nil
}

// applyQuery is setQuery for queries typed by the user: an invalid query
// is reported on the status line and the view keeps its contents.
func (s *session) applyQuery(q string) {
	if err := s.setQuery(q); err != nil {
		s.status(err.Error())
	}
}

func (s *session) status(msg string) {
	if s.layout != nil {
		s.layout.PrintStatus(msg, statusMsgDelay)
	}
}

func (s *session) filterName() string {
	if f := s.cli.filters.Current(); f != nil {
		return f.String()
	}
	return ""
}

func (s *session) draw() {
	if s.layout == nil {
		return
	}
	s.layout.SetStatusInfo(ui.StatusInfo(s.filterName(), s.view.Len(), s.list.Len()))
	s.layout.Draw()
}

func (s *session) close() {
	if s.layout != nil {
		s.layout.Close()
	}
	s.tracker.Close()
	s.view.Dispose()
}
