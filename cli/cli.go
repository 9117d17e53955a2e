package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gdamore/tcell/v2"
	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/liveview"
	"github.com/peco/liveview/config"
	"github.com/peco/liveview/filter"
	"github.com/peco/liveview/hub"
	"github.com/peco/liveview/internal/util"
	"github.com/peco/liveview/line"
	"github.com/peco/liveview/observable"
	"github.com/peco/liveview/query"
	"github.com/peco/liveview/script"
	"github.com/peco/liveview/selection"
	"github.com/peco/liveview/sig"
	"github.com/peco/liveview/ui"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	hubBufferSize   = 5
	statusMsgDelay  = 2 * time.Second
	maxScannerToken = 1024 * 1024
)

// New creates a CLI bound to the process's standard streams.
func New(version string) *CLI {
	return &CLI{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: func() bool { return util.IsTty(os.Stderr) },
		NewScreen:   tcell.NewScreen,
		version:     version,
	}
}

// Run parses args and runs the selected mode until it completes, the user
// cancels, or ctx is done.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if pdebug.Enabled {
		g := pdebug.Marker("CLI.Run")
		defer g.End()
	}

	rest, err := c.options.parse(args)
	if err != nil {
		c.Stderr.Write(c.options.help())
		return err
	}

	if c.options.OptHelp {
		c.Stdout.Write(c.options.help())
		return nil
	}
	if c.options.OptVersion {
		fmt.Fprintf(c.Stdout, "liveview version %s (built with %s)\n", c.version, runtime.Version())
		return nil
	}

	if err := c.configure(); err != nil {
		return err
	}

	in, closeInput, err := c.input(rest)
	if err != nil {
		return err
	}
	defer closeInput()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var intr interrupt
	sigh := sig.New(&intr)
	go sigh.Loop(ctx, cancel)

	switch {
	case c.options.OptTrace:
		err = c.trace(ctx, in)
	case c.useTUI():
		err = c.interactive(ctx, cancel, in)
	default:
		err = c.stream(ctx, cancel, in)
	}
	return intr.wrap(err)
}

// configure reads the rc file and applies the command line on top of it.
func (c *CLI) configure() error {
	if err := c.config.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize config")
	}

	rcfile := c.options.OptRcfile
	if rcfile == "" {
		if file, err := config.LocateRcfile(config.DefaultConfigLocator); err == nil {
			rcfile = file
		}
	}
	if rcfile != "" {
		if err := c.config.ReadFilename(rcfile); err != nil {
			return errors.Wrap(err, "failed to setup configuration")
		}
	}

	o := c.options
	cfg := &c.config
	if o.OptQuery != "" {
		cfg.InitialQuery = o.OptQuery
	}
	if o.OptInitialFilter != "" {
		cfg.InitialFilter = o.OptInitialFilter
	}
	if o.OptPrompt != "" {
		cfg.Prompt = o.OptPrompt
	}
	if o.OptBufferSize > 0 {
		cfg.BufferSize = o.OptBufferSize
	}
	if o.OptMaxWidth > 0 {
		cfg.MaxWidth = o.OptMaxWidth
	}
	if o.OptSort != config.SortNone {
		cfg.SortOrder = o.OptSort
	}
	if o.OptSelectionPrefix != "" {
		cfg.SelectionPrefix = o.OptSelectionPrefix
	}
	if o.OptSticky {
		cfg.StickySelection = true
	}
	if o.OptOnCancel != "" {
		if err := cfg.OnCancel.UnmarshalText([]byte(o.OptOnCancel)); err != nil {
			return errors.Wrap(err, "invalid --on-cancel")
		}
	}

	c.filters = filter.NewDefaultSet()
	if cfg.InitialFilter != "" {
		if err := c.filters.SetCurrentByName(cfg.InitialFilter); err != nil {
			return errors.Wrapf(err, "unknown filter: '%s'", cfg.InitialFilter)
		}
	}
	return nil
}

// input opens FILE, or falls back to stdin unless stdin is a terminal.
func (c *CLI) input(args []string) (io.Reader, func(), error) {
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to open file %s", args[0])
		}
		return f, func() { f.Close() }, nil
	}

	if f, ok := c.Stdin.(*os.File); ok && util.IsTty(f) {
		return nil, nil, errors.New("you must supply something to work with via filename or stdin")
	}
	return c.Stdin, func() {}, nil
}

func (c *CLI) useTUI() bool {
	switch c.options.OptTUI {
	case TUIAlways:
		return true
	case TUINever:
		return false
	default:
		return c.Interactive != nil && c.Interactive()
	}
}

// newView creates the source list and a view over it, sorted as
// configured.
func (c *CLI) newView() (*observable.List[line.Line], *liveview.FilteredView[line.Line]) {
	list := observable.New[line.Line]()
	list.SetCapacity(c.config.BufferSize)

	var options []liveview.Option[line.Line]
	if cmp := c.config.SortOrder.Compare(); cmp != nil {
		options = append(options, liveview.WithSort(func(a, b line.Line) int {
			return cmp(a.DisplayString(), b.DisplayString())
		}))
	}
	return list, liveview.New[line.Line](list, options...)
}

func (c *CLI) newSession(h *hub.Hub) *session {
	list, view := c.newView()
	sel := selection.New()
	return &session{
		cli:     c,
		hub:     h,
		list:    list,
		query:   &query.Text{},
		sel:     sel,
		tracker: selection.Track(sel, view, c.config.StickySelection),
		view:    view,
	}
}

// trace replays the commands read from in and prints every notification
// the view raises.
func (c *CLI) trace(ctx context.Context, in io.Reader) error {
	cmds, err := script.Parse(in)
	if err != nil {
		return errors.Wrap(err, "failed to parse commands")
	}

	list, view := c.newView()
	s := script.NewSession(list, view, c.filters, &c.idgen).EnableSep(c.options.OptEnableNullSep)
	if q := c.config.InitialQuery; q != "" {
		if err := s.SetQuery(q); err != nil {
			return errors.Wrap(err, "invalid initial query")
		}
	}

	t := newTracer(c.Stdout, c.options.OptFormat, c.config.MaxWidth)
	t.attach(view)

	if err := s.Run(ctx, cmds); err != nil {
		return err
	}
	return t.err
}

// stream reads every line of in, then prints the lines the view shows.
func (c *CLI) stream(ctx context.Context, cancel func(), in io.Reader) error {
	h := hub.New(hubBufferSize)
	s := c.newSession(h)
	defer s.close()

	if err := s.setQuery(c.config.InitialQuery); err != nil {
		return errors.Wrap(err, "invalid initial query")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLines(ctx, h, in) })
	g.Go(func() error {
		defer cancel()
		return s.loop(ctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.printLines(s.result)
}

// interactive runs the terminal UI.
func (c *CLI) interactive(ctx context.Context, cancel func(), in io.Reader) error {
	screen, err := c.NewScreen()
	if err != nil {
		return errors.Wrap(err, "failed to create screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize screen")
	}
	var once sync.Once
	fini := func() { once.Do(screen.Fini) }
	defer fini()

	h := hub.New(hubBufferSize)
	s := c.newSession(h)
	defer s.close()

	s.query.Set(c.config.InitialQuery)
	if err := s.setQuery(c.config.InitialQuery); err != nil {
		return errors.Wrap(err, "invalid initial query")
	}
	s.layout = ui.NewLayout(screen, s.view, s.sel, s.query, &c.config, func() {
		h.SendCommand(ctx, hub.CommandRedraw)
	})
	s.draw()

	// the reader may block on input forever, so it is not waited for
	go c.readLines(ctx, h, in)

	var sendQuery func(func())
	if d := c.config.QueryExecutionDelay; d > 0 {
		sendQuery = debounce.New(time.Duration(d) * time.Millisecond)
	} else {
		sendQuery = func(f func()) { f() }
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.loop(ctx)
	})
	g.Go(func() error {
		return c.pollEvents(ctx, screen, h, s.query, sendQuery)
	})
	g.Go(func() error {
		<-ctx.Done()
		fini()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.printLines(s.result)
}

// readLines sends every line of in to the hub, then the end of input.
func (c *CLI) readLines(ctx context.Context, h *hub.Hub, in io.Reader) error {
	if pdebug.Enabled {
		g := pdebug.Marker("CLI.readLines")
		defer g.End()
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxScannerToken)
	for scanner.Scan() {
		if !h.SendLine(ctx, scanner.Text()) {
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		err = errors.Wrap(err, "failed to read input")
		h.SendStatusMsg(ctx, err.Error(), 0)
		return err
	}
	h.SendCommand(ctx, hub.CommandEndOfInput)
	return nil
}

func (c *CLI) printLines(lines []line.Line) error {
	w := bufio.NewWriter(c.Stdout)
	for _, l := range lines {
		out := l.Output()
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		if _, err := w.WriteString(out); err != nil {
			return errors.Wrap(err, "failed to write output")
		}
	}
	return errors.Wrap(w.Flush(), "failed to write output")
}
