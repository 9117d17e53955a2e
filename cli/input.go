package cli

import (
	"context"

	"github.com/gdamore/tcell/v2"
	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/liveview/hub"
	"github.com/peco/liveview/query"
)

var keyCommands = map[tcell.Key]hub.Command{
	tcell.KeyEnter:  hub.CommandFinish,
	tcell.KeyEscape: hub.CommandCancel,
	tcell.KeyCtrlC:  hub.CommandCancel,
	tcell.KeyUp:     hub.CommandCursorUp,
	tcell.KeyCtrlP:  hub.CommandCursorUp,
	tcell.KeyDown:   hub.CommandCursorDown,
	tcell.KeyCtrlN:  hub.CommandCursorDown,
	tcell.KeyTab:    hub.CommandToggleSelection,
	tcell.KeyCtrlR:  hub.CommandRotateFilter,
	tcell.KeyCtrlL:  hub.CommandRedraw,
}

// editQuery applies an editing key to q and reports whether q changed.
// handled is false for keys that do not edit.
func editQuery(q *query.Text, ev *tcell.EventKey) (changed, handled bool) {
	switch ev.Key() {
	case tcell.KeyRune:
		q.Insert(ev.Rune())
		return true, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return q.DeleteBackward(), true
	case tcell.KeyDelete, tcell.KeyCtrlD:
		return q.DeleteForward(), true
	case tcell.KeyCtrlK:
		return q.DeleteToEnd(), true
	case tcell.KeyCtrlW:
		return q.DeleteWordBackward(), true
	case tcell.KeyCtrlU:
		changed = q.Len() > 0
		q.Reset()
		return changed, true
	case tcell.KeyLeft, tcell.KeyCtrlB:
		q.MoveCaret(-1)
		return false, true
	case tcell.KeyRight, tcell.KeyCtrlF:
		q.MoveCaret(1)
		return false, true
	case tcell.KeyHome, tcell.KeyCtrlA:
		q.CaretToStart()
		return false, true
	case tcell.KeyEnd, tcell.KeyCtrlE:
		q.CaretToEnd()
		return false, true
	}
	return false, false
}

// pollEvents turns terminal events into hub traffic until the screen is
// finalized. Each event is delivered in a batch, so the session sees
// keys in the order they were typed.
func (c *CLI) pollEvents(ctx context.Context, screen tcell.Screen, h *hub.Hub, q *query.Text, sendQuery func(func())) error {
	if pdebug.Enabled {
		g := pdebug.Marker("CLI.pollEvents")
		defer g.End()
	}

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
			h.Batch(ctx, func(ctx context.Context) {
				h.SendCommand(ctx, hub.CommandRedraw)
			})
		case *tcell.EventKey:
			h.Batch(ctx, func(bctx context.Context) {
				if cmd, ok := keyCommands[ev.Key()]; ok {
					h.SendCommand(bctx, cmd)
					return
				}
				changed, handled := editQuery(q, ev)
				if !handled {
					return
				}
				h.SendCommand(bctx, hub.CommandRedraw)
				if changed {
					// the debounced send outlives the batch
					text := q.String()
					sendQuery(func() { h.SendQuery(ctx, text) })
				}
			})
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}
