// Package broadcast fans status events out to every attached observer.
//
// A Broadcaster owns a list of observers. Each observer has a buffered queue
// drained by its own writer goroutine, so a slow or stuck observer never holds
// up a broadcast or the other observers. Each event is encoded once and
// enqueued, in call order, on every observer attached at that moment; events
// emitted in sequence by one request therefore reach each observer in that
// sequence. A failed write, or an event dropped because an observer's queue is
// full, is logged as a miss. Only Detach removes an observer.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/gashibujar1988-crypto/Robotrna/logging"
)

// Conn is one observer channel. Detach finds a Conn with ==, so its dynamic
// type must be comparable (pointer receivers are); Attach rejects others.
type Conn interface {
	Send(ctx context.Context, data []byte) error
}

// Options configures a Broadcaster.
type Options struct {
	// SendTimeout bounds a single write to one observer. Zero disables the bound.
	SendTimeout time.Duration
	// QueueSize is the number of events buffered per observer (default 64).
	QueueSize int
	// Logger (defaults to NoOpLogger)
	Logger logging.Logger
}

// Broadcaster is safe for concurrent use.
type Broadcaster struct {
	mu        sync.RWMutex
	observers []*observer
	closed    bool
	opts      Options
}

// item is one queued frame, or a flush marker when flushed is non-nil.
type item struct {
	data    []byte
	flushed chan struct{}
}

type observer struct {
	conn  Conn
	queue chan item
	done  chan struct{}
	stop  sync.Once
}

func (o *observer) close() {
	o.stop.Do(func() { close(o.done) })
}

// New creates an empty Broadcaster.
func New(optFns ...func(o *Options)) *Broadcaster {
	opts := Options{
		SendTimeout: 5 * time.Second,
		QueueSize:   64,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	return &Broadcaster{opts: opts}
}

// Attach registers c and starts its writer. Attaching after Close, or
// attaching a nil or non-comparable Conn, is a no-op.
func (b *Broadcaster) Attach(c Conn) {
	if c == nil || !reflect.TypeOf(c).Comparable() {
		b.opts.Logger.Error("broadcast.observer_rejected", "type", fmt.Sprintf("%T", c))
		return
	}

	o := &observer{
		conn:  c,
		queue: make(chan item, b.opts.QueueSize),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.observers = append(b.observers, o)
	total := len(b.observers)
	b.mu.Unlock()

	go b.writeLoop(o)

	b.opts.Logger.Info("broadcast.observer_attached", "total", total)
}

// Detach removes c and stops its writer; events still queued for it are
// discarded. Removing an absent connection is not an error.
func (b *Broadcaster) Detach(c Conn) {
	if c == nil || !reflect.TypeOf(c).Comparable() {
		return
	}

	b.mu.Lock()
	i := slices.IndexFunc(b.observers, func(o *observer) bool { return o.conn == c })
	if i < 0 {
		b.mu.Unlock()
		return
	}
	o := b.observers[i]
	b.observers = slices.Delete(b.observers, i, i+1)
	total := len(b.observers)
	b.mu.Unlock()

	o.close()

	b.opts.Logger.Info("broadcast.observer_detached", "total", total)
}

// Len returns the number of attached observers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}

// BroadcastLog sends {"type":"log"} to every observer.
func (b *Broadcaster) BroadcastLog(ctx context.Context, message, level string) {
	b.broadcast(ctx, NewLogEvent(message, level))
}

// BroadcastAgentStatus sends {"type":"agent_status"} to every observer.
func (b *Broadcaster) BroadcastAgentStatus(ctx context.Context, agent string, status Status) {
	b.broadcast(ctx, NewAgentStatusEvent(agent, status))
}

// Flush blocks until every event enqueued before the call has been written
// (or has failed) on every observer attached at the time, or ctx ends.
func (b *Broadcaster) Flush(ctx context.Context) error {
	b.mu.RLock()
	snapshot := slices.Clone(b.observers)
	b.mu.RUnlock()

	for _, o := range snapshot {
		marker := item{flushed: make(chan struct{})}

		select {
		case o.queue <- marker:
		case <-o.done:
			continue
		case <-ctx.Done():
			return ctx.Err()
		}

		select {
		case <-marker.flushed:
		case <-o.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Close stops every writer and drops every observer. Later broadcasts and
// attaches do nothing. Closing the underlying transports is left to their
// owners; call Flush first to deliver what is queued.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	observers := b.observers
	b.observers = nil
	b.closed = true
	b.mu.Unlock()

	for _, o := range observers {
		o.close()
	}
}

func (b *Broadcaster) broadcast(_ context.Context, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		b.opts.Logger.Error("broadcast.encode_failed", "error", err)
		return
	}

	// Enqueueing under the read lock keeps one caller's events in order on
	// every observer and never blocks: a full queue drops the event.
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, o := range b.observers {
		select {
		case o.queue <- item{data: data}:
		default:
			b.opts.Logger.Warn("broadcast.queue_full", "observer", fmt.Sprintf("%T", o.conn))
		}
	}
}

// writeLoop delivers o's queue until o is detached. Writes run detached from
// any request context so a finished request still flushes its last events.
func (b *Broadcaster) writeLoop(o *observer) {
	for {
		select {
		case <-o.done:
			return
		case it := <-o.queue:
			if it.flushed != nil {
				close(it.flushed)
				continue
			}
			if err := b.send(o.conn, it.data); err != nil {
				b.opts.Logger.Warn("broadcast.send_failed", "error", err)
			}
		}
	}
}

func (b *Broadcaster) send(c Conn, data []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	ctx := context.Background()
	if b.opts.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.SendTimeout)
		defer cancel()
	}

	return c.Send(ctx, data)
}
