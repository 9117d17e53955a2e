package ui

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/peco/liveview"
	"github.com/peco/liveview/config"
	"github.com/peco/liveview/line"
	"github.com/peco/liveview/query"
	"github.com/peco/liveview/selection"
)

// Layout places the prompt on the first row, the list below it and the
// status bar on the last row of the screen.
type Layout struct {
	list   *ListArea
	prompt *UserPrompt
	screen tcell.Screen
	status *StatusBar
}

// ListArea shows the lines of a view and keeps a cursor on one of them.
// The cursor stays on the same line while the view changes around it.
type ListArea struct {
	changedID liveview.HandlerID
	cursor    int
	dirty     bool
	offset    int
	prefix    string
	propID    liveview.HandlerID
	selection *selection.Set
	styles    *config.StyleSet
	view      *liveview.FilteredView[line.Line]
}

// UserPrompt draws the prompt and the query being typed.
type UserPrompt struct {
	prompt string
	query  *query.Text
	styles *config.StyleSet
}

// StatusBar draws either a transient message or the status info.
type StatusBar struct {
	clearTimer *time.Timer
	info       string
	msg        string
	mutex      sync.Mutex
	onClear    func()
	styles     *config.StyleSet
}
