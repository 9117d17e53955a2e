package hub

import (
	"sync"
	"time"
)

// Hub carries messages from the goroutines that read input and keys to
// the single goroutine that owns the source list and its views.
type Hub struct {
	mutex       sync.Mutex
	lineCh      chan *Payload[string]
	commandCh   chan *Payload[Command]
	queryCh     chan *Payload[string]
	statusMsgCh chan *Payload[StatusMsg]
}

// Payload wraps a value sent through the Hub. When it was sent inside
// Batch, the sender waits until the receiver calls Done.
type Payload[T any] struct {
	batch bool
	data  T
	done  chan struct{}
}

// Command is a request to the owning goroutine that carries no data.
type Command int

const (
	CommandEndOfInput      Command = iota + 1 // CommandEndOfInput reports that the reader hit EOF
	CommandRotateFilter                       // CommandRotateFilter switches to the next filter
	CommandCursorUp                           // CommandCursorUp moves the cursor one line up
	CommandCursorDown                         // CommandCursorDown moves the cursor one line down
	CommandToggleSelection                    // CommandToggleSelection (de)selects the line under the cursor
	CommandFinish                             // CommandFinish accepts the selection
	CommandCancel                             // CommandCancel exits without output
	CommandRedraw                             // CommandRedraw redraws the whole screen
)

// StatusMsg is a message for the status line.
type StatusMsg interface {
	Message() string
	Delay() time.Duration
}

type statusMsgReq struct {
	msg   string
	delay time.Duration
}
