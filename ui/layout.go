package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/mattn/go-runewidth"
	"github.com/peco/liveview"
	"github.com/peco/liveview/config"
	"github.com/peco/liveview/line"
	"github.com/peco/liveview/query"
	"github.com/peco/liveview/selection"
)

// NewLayout creates a layout drawing on screen. onStatusCleared is called
// from a timer goroutine when a transient status message expires, so it
// must only hand the redraw over to the goroutine that owns the view.
func NewLayout(screen tcell.Screen, view *liveview.FilteredView[line.Line], sel *selection.Set, q *query.Text, cfg *config.Config, onStatusCleared func()) *Layout {
	styles := &cfg.Style
	return &Layout{
		list:   NewListArea(view, sel, styles, cfg.SelectionPrefix),
		prompt: &UserPrompt{prompt: cfg.Prompt, query: q, styles: styles},
		screen: screen,
		status: &StatusBar{onClear: onStatusCleared, styles: styles},
	}
}

// List returns the list area.
func (l *Layout) List() *ListArea {
	return l.list
}

// PrintStatus shows msg in the status bar. A positive delay clears it
// again after that long.
func (l *Layout) PrintStatus(msg string, delay time.Duration) {
	l.status.Print(msg, delay)
}

// SetStatusInfo sets what the status bar shows when there is no message.
func (l *Layout) SetStatusInfo(info string) {
	l.status.SetInfo(info)
}

// Draw renders the whole screen.
func (l *Layout) Draw() {
	if pdebug.Enabled {
		g := pdebug.Marker("Layout.Draw")
		defer g.End()
	}

	w, h := l.screen.Size()
	l.screen.Clear()
	if w <= 0 || h <= 0 {
		l.screen.Show()
		return
	}

	l.prompt.Draw(l.screen, 0, w)
	if h > 2 {
		l.list.Draw(l.screen, 1, h-2, w)
	}
	if h > 1 {
		l.status.Draw(l.screen, h-1, w)
	}
	l.screen.Show()
}

// Close stops the layout from following its view.
func (l *Layout) Close() {
	l.list.Close()
	l.status.stopTimer()
}

// StatusInfo formats the default status line content.
func StatusInfo(filterName string, visible, total int) string {
	return fmt.Sprintf("%s [%s/%s]", filterName, humanize.Comma(int64(visible)), humanize.Comma(int64(total)))
}

// NewListArea creates a list area following view.
func NewListArea(view *liveview.FilteredView[line.Line], sel *selection.Set, styles *config.StyleSet, prefix string) *ListArea {
	a := &ListArea{
		dirty:     true,
		prefix:    prefix,
		selection: sel,
		styles:    styles,
		view:      view,
	}
	a.changedID = view.OnChanged(a.onChanged)
	a.propID = view.OnPropertyChanged(a.onPropertyChanged)
	return a
}

// Close unregisters the area from its view.
func (a *ListArea) Close() {
	a.view.RemoveChangedHandler(a.changedID)
	a.view.RemovePropertyHandler(a.propID)
}

// Cursor returns the view index under the cursor.
func (a *ListArea) Cursor() int {
	return a.cursor
}

// Dirty reports whether the view changed since the last Draw.
func (a *ListArea) Dirty() bool {
	return a.dirty
}

// Current returns the line under the cursor.
func (a *ListArea) Current() (line.Line, bool) {
	if a.cursor < 0 || a.cursor >= a.view.Len() {
		return nil, false
	}
	return a.view.At(a.cursor), true
}

// MoveCursor moves the cursor by diff lines, wrapping around the ends.
func (a *ListArea) MoveCursor(diff int) {
	n := a.view.Len()
	if n == 0 {
		a.cursor = 0
		return
	}
	a.cursor = ((a.cursor+diff)%n + n) % n
	a.dirty = true
}

func (a *ListArea) onPropertyChanged(p liveview.Property) {
	if p == liveview.PropertyIndexer {
		a.dirty = true
	}
}

func (a *ListArea) onChanged(e liveview.Event[line.Line]) {
	switch e.Action {
	case liveview.ActionAdded:
		if e.NewIndex <= a.cursor && a.view.Len() > 1 {
			a.cursor++
		}
	case liveview.ActionRemoved:
		if e.OldIndex < a.cursor {
			a.cursor--
		}
	case liveview.ActionMoved:
		switch {
		case e.OldIndex == a.cursor:
			a.cursor = e.NewIndex
		case e.OldIndex < a.cursor && e.NewIndex >= a.cursor:
			a.cursor--
		case e.OldIndex > a.cursor && e.NewIndex <= a.cursor:
			a.cursor++
		}
	case liveview.ActionReset:
		a.offset = 0
	}
	a.cursor = max(0, min(a.cursor, a.view.Len()-1))
}

// Draw renders rows [top, top+height) of the screen.
func (a *ListArea) Draw(s tcell.Screen, top, height, width int) {
	if height <= 0 {
		return
	}

	// keep the cursor on screen
	if a.cursor < a.offset {
		a.offset = a.cursor
	} else if a.cursor >= a.offset+height {
		a.offset = a.cursor - height + 1
	}
	a.offset = max(0, min(a.offset, a.view.Len()-height))

	basic := tcellStyle(a.styles.Basic)
	prefixWidth := runewidth.StringWidth(a.prefix)
	for row := range height {
		y := top + row
		i := a.offset + row
		if i >= a.view.Len() {
			fillRow(s, 0, y, basic)
			continue
		}

		l := a.view.At(i)
		style := basic
		switch {
		case i == a.cursor:
			style = tcellStyle(a.styles.Selected)
		case a.selection.Has(l):
			style = tcellStyle(a.styles.SavedSelection)
		}

		x := 0
		if prefixWidth > 0 {
			if i == a.cursor {
				x = printString(s, x, y, width, a.prefix, style)
			}
			x = printString(s, x, y, width, runewidth.FillRight("", prefixWidth+1-x), style)
		}
		x = printString(s, x, y, width, l.DisplayString(), style)
		fillRow(s, x, y, style)
	}
	a.dirty = false
}

// Draw renders the prompt row.
func (p *UserPrompt) Draw(s tcell.Screen, y, width int) {
	promptStyle := tcellStyle(p.styles.Prompt)
	x := printString(s, 0, y, width, p.prompt, promptStyle)
	x = printString(s, x, y, width, " ", promptStyle)

	queryStyle := tcellStyle(p.styles.Query)
	start := x
	runes := []rune(p.query.String())
	caret := p.query.Caret()
	cursorX := x
	for i, r := range runes {
		if i == caret {
			cursorX = x
		}
		x = printString(s, x, y, width, string(r), queryStyle)
	}
	if caret >= len(runes) {
		cursorX = x
	}
	fillRow(s, x, y, queryStyle)

	if cursorX < width && cursorX >= start {
		s.ShowCursor(cursorX, y)
	} else {
		s.HideCursor()
	}
}

// Print shows msg until another message replaces it or, with a positive
// delay, until the delay expires.
func (b *StatusBar) Print(msg string, delay time.Duration) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.clearTimer != nil {
		b.clearTimer.Stop()
		b.clearTimer = nil
	}
	b.msg = msg
	if delay <= 0 {
		return
	}
	b.clearTimer = time.AfterFunc(delay, func() {
		b.mutex.Lock()
		b.msg = ""
		b.clearTimer = nil
		b.mutex.Unlock()
		if b.onClear != nil {
			b.onClear()
		}
	})
}

// SetInfo sets the text shown when there is no message.
func (b *StatusBar) SetInfo(info string) {
	b.mutex.Lock()
	b.info = info
	b.mutex.Unlock()
}

// Text returns what the bar currently shows.
func (b *StatusBar) Text() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.msg != "" {
		return b.msg
	}
	return b.info
}

// Draw renders the status row.
func (b *StatusBar) Draw(s tcell.Screen, y, width int) {
	style := tcellStyle(b.styles.Status)
	x := printString(s, 0, y, width, b.Text(), style)
	fillRow(s, x, y, style)
}

func (b *StatusBar) stopTimer() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.clearTimer != nil {
		b.clearTimer.Stop()
		b.clearTimer = nil
	}
}
