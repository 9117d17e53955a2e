package hub

import (
	"context"
	"strconv"
	"time"

	pdebug "github.com/lestrrat-go/pdebug"
)

type operationNameKey struct{}
type batchPayloadKey struct{}

// NewPayload creates a new Payload with the given data and batch flag.
func NewPayload[T any](data T, batch bool) *Payload[T] {
	p := &Payload[T]{
		data:  data,
		batch: batch,
	}
	if batch {
		p.done = make(chan struct{}, 1)
	}
	return p
}

// Batch reports whether the sender is waiting for Done.
func (p *Payload[T]) Batch() bool {
	return p.batch
}

func (p *Payload[T]) Data() T {
	return p.data
}

// Done marks the payload as processed. It never blocks, and it is a no-op
// for payloads sent outside Batch.
func (p *Payload[T]) Done() {
	if p.done == nil {
		return
	}
	select {
	case p.done <- struct{}{}:
	default:
	}
}

func (p *Payload[T]) waitDone(ctx context.Context) {
	select {
	case <-p.done:
	case <-ctx.Done():
	}
}

// New creates a Hub whose channels buffer bufsiz payloads each.
func New(bufsiz int) *Hub {
	return &Hub{
		lineCh:      make(chan *Payload[string], bufsiz),
		commandCh:   make(chan *Payload[Command], bufsiz),
		queryCh:     make(chan *Payload[string], bufsiz),
		statusMsgCh: make(chan *Payload[StatusMsg], bufsiz),
	}
}

// Batch runs f with a context under which every send waits for the
// receiver to call Done. Batches are serialized.
func (h *Hub) Batch(ctx context.Context, f func(ctx context.Context)) {
	if pdebug.Enabled {
		g := pdebug.Marker("Hub.Batch")
		defer g.End()
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	f(context.WithValue(ctx, batchPayloadKey{}, true))
}

func isBatchCtx(ctx context.Context) bool {
	v, _ := ctx.Value(batchPayloadKey{}).(bool)
	return v
}

// send delivers r on ch unless ctx is done first. Inside a batch it then
// waits for the receiver.
func send[T any](ctx context.Context, name string, ch chan *Payload[T], r *Payload[T]) bool {
	ctx = context.WithValue(ctx, operationNameKey{}, name)
	if pdebug.Enabled {
		g := pdebug.Marker("hub.send (name=%s, isBatchMode=%t)", name, r.batch)
		defer g.End()
	}

	select {
	case ch <- r:
	case <-ctx.Done():
		return false
	}

	if r.batch {
		r.waitDone(ctx)
	}
	return true
}

func (h *Hub) LineCh() chan *Payload[string] {
	return h.lineCh
}

// SendLine sends a line of input to the owner of the source list. It
// reports false when ctx was done before the line could be delivered.
func (h *Hub) SendLine(ctx context.Context, l string) bool {
	return send(ctx, "send line", h.lineCh, NewPayload(l, isBatchCtx(ctx)))
}

func (h *Hub) CommandCh() chan *Payload[Command] {
	return h.commandCh
}

func (h *Hub) SendCommand(ctx context.Context, c Command) bool {
	return send(ctx, "send command", h.commandCh, NewPayload(c, isBatchCtx(ctx)))
}

func (h *Hub) QueryCh() chan *Payload[string] {
	return h.queryCh
}

// SendQuery sends the current query text to be compiled into the view's
// predicate.
func (h *Hub) SendQuery(ctx context.Context, q string) bool {
	return send(ctx, "send query", h.queryCh, NewPayload(q, isBatchCtx(ctx)))
}

func (h *Hub) StatusMsgCh() chan *Payload[StatusMsg] {
	return h.statusMsgCh
}

// SendStatusMsg sends a message for the status line, to be cleared after
// clearDelay. A zero clearDelay keeps it until the next message.
func (h *Hub) SendStatusMsg(ctx context.Context, msg string, clearDelay time.Duration) bool {
	return send(ctx, "send status message", h.statusMsgCh, NewPayload[StatusMsg](statusMsgReq{msg: msg, delay: clearDelay}, isBatchCtx(ctx)))
}

func (r statusMsgReq) Message() string {
	return r.msg
}

func (r statusMsgReq) Delay() time.Duration {
	return r.delay
}

func (c Command) String() string {
	switch c {
	case CommandEndOfInput:
		return "EndOfInput"
	case CommandRotateFilter:
		return "RotateFilter"
	case CommandCursorUp:
		return "CursorUp"
	case CommandCursorDown:
		return "CursorDown"
	case CommandToggleSelection:
		return "ToggleSelection"
	case CommandFinish:
		return "Finish"
	case CommandCancel:
		return "Cancel"
	case CommandRedraw:
		return "Redraw"
	default:
		return "Command(" + strconv.Itoa(int(c)) + ")"
	}
}
