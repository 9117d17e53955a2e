package cli

import (
	"context"
	"os"

	"github.com/peco/liveview/sig"
	"github.com/pkg/errors"
)

var errCanceled = ignorableError{error: errors.New("canceled by user"), status: 1}

func (e ignorableError) Ignorable() bool {
	return true
}

func (e ignorableError) ExitStatus() int {
	return e.status
}

func (i *interrupt) Handle(s os.Signal) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.signal = sig.Interrupted{Signal: s}
}

// wrap replaces a cancellation caused by a signal with the signal.
func (i *interrupt) wrap(err error) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	if i.signal != nil && (err == nil || errors.Is(err, context.Canceled)) {
		return i.signal
	}
	return err
}
