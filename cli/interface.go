// Package cli implements the liveview command: an interactive line
// filter, a streaming filter and a tracer that prints every change a
// filtered view reports.
package cli

import (
	"io"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/peco/liveview"
	"github.com/peco/liveview/config"
	"github.com/peco/liveview/filter"
	"github.com/peco/liveview/hub"
	"github.com/peco/liveview/line"
	"github.com/peco/liveview/observable"
	"github.com/peco/liveview/query"
	"github.com/peco/liveview/selection"
	"github.com/peco/liveview/ui"
)

// Output formats of the trace mode.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Values of --tui.
const (
	TUIAuto   = "auto"
	TUIAlways = "always"
	TUINever  = "never"
)

// Options are the command line options.
type Options struct {
	OptHelp            bool             `short:"h" long:"help" description:"show this help message and exit"`
	OptVersion         bool             `long:"version" description:"print the version and exit"`
	OptRcfile          string           `long:"rcfile" description:"path to the settings file"`
	OptQuery           string           `long:"query" description:"initial value for query"`
	OptInitialFilter   string           `long:"initial-filter" description:"specify the default filter (IgnoreCase, CaseSensitive, SmartCase, Regexp, IRegexp, Fuzzy)"`
	OptPrompt          string           `long:"prompt" description:"specify the prompt string"`
	OptBufferSize      int              `short:"b" long:"buffer-size" description:"number of lines to keep in search buffer"`
	OptEnableNullSep   bool             `long:"null" description:"expect NUL (\\0) as separator for target/output"`
	OptMaxWidth        int              `long:"max-width" description:"truncate trace output to this many columns"`
	OptSort            config.SortOrder `long:"sort" description:"sort visible lines: asc, desc or natural"`
	OptSelectionPrefix string           `long:"selection-prefix" description:"use a prefix instead of changing line color to indicate currently selected lines"`
	OptOnCancel        string           `long:"on-cancel" description:"specify action on user cancel: 'success' or 'error'"`
	OptSticky          bool             `long:"sticky-selection" description:"keep selected lines that are filtered out"`
	OptTrace           bool             `long:"trace" description:"read view commands instead of lines and print every notification"`
	OptFormat          string           `long:"format" description:"trace output format: 'text' or 'yaml'" default:"text"`
	OptTUI             string           `long:"tui" description:"interactive mode: 'auto', 'always' or 'never'" default:"auto"`
}

// CLI runs the liveview command.
type CLI struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive decides what --tui=auto means.
	Interactive func() bool
	// NewScreen creates the terminal screen of the interactive mode.
	NewScreen func() (tcell.Screen, error)

	config  config.Config
	filters *filter.Set
	idgen   line.SequentialIDGenerator
	options Options
	version string
}

// session owns the source list and the view. Everything that touches
// them runs on the goroutine executing loop.
type session struct {
	cli     *CLI
	done    bool
	hub     *hub.Hub
	layout  *ui.Layout
	list    *observable.List[line.Line]
	query   *query.Text
	result  []line.Line
	sel     *selection.Set
	tracker *selection.Tracker
	view    *liveview.FilteredView[line.Line]
}

// interrupt records the signal that stopped a session.
type interrupt struct {
	mutex  sync.Mutex
	signal error
}

// tracer prints the notifications of a view.
type tracer struct {
	err      error
	format   string
	maxWidth int
	out      io.Writer
}

type traceRecord struct {
	Kind     string `yaml:"kind"`
	Action   string `yaml:"action,omitempty"`
	Property string `yaml:"property,omitempty"`
	Item     string `yaml:"item,omitempty"`
	OldIndex *int   `yaml:"oldIndex,omitempty"`
	NewIndex *int   `yaml:"newIndex,omitempty"`
}

type ignorableError struct {
	error
	status int
}
