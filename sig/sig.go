// Package sig turns OS signals into cancellation of a running session.
package sig

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pdebug "github.com/lestrrat-go/pdebug"
)

type ReceivedHandler interface {
	Handle(os.Signal)
}

type ReceivedHandlerFunc func(os.Signal)

// Handle calls the underlying function with the received signal.
func (s ReceivedHandlerFunc) Handle(sig os.Signal) {
	s(sig)
}

type Handler struct {
	onSignalReceived ReceivedHandler
	sigCh            chan os.Signal
}

// Interrupted is the error a session reports when a signal stopped it.
type Interrupted struct {
	Signal os.Signal
}

// New creates a handler that forwards the given signals (default:
// SIGTERM, SIGINT, SIGHUP) to h.
func New(h ReceivedHandler, sigs ...os.Signal) *Handler {
	if len(sigs) == 0 {
		sigs = append(sigs, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	return &Handler{
		onSignalReceived: h,
		sigCh:            ch,
	}
}

// Loop waits for the first signal or for ctx to be done, and calls cancel
// either way. A received signal is passed to the handler first.
func (h *Handler) Loop(ctx context.Context, cancel func()) error {
	defer cancel()
	defer signal.Stop(h.sigCh)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case s := <-h.sigCh:
		if pdebug.Enabled {
			pdebug.Printf("sig.Handler: received %s", s)
		}
		h.onSignalReceived.Handle(s)
		return nil
	}
}

func (e Interrupted) Error() string {
	return fmt.Sprintf("interrupted by %s", e.Signal)
}

// ExitStatus follows the shell convention of 128 plus the signal number.
func (e Interrupted) ExitStatus() int {
	if s, ok := e.Signal.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}

// Ignorable reports true: an interrupted session exits quietly.
func (e Interrupted) Ignorable() bool {
	return true
}
