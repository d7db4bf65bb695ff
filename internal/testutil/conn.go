package testutil

import (
	"context"
	"encoding/json"
	"sync"
)

// RecordingConn is an observer connection that keeps every frame it is sent.
// Use a pointer; the broadcaster compares connections by identity.
type RecordingConn struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

// NewRecordingConn creates an empty RecordingConn.
func NewRecordingConn() *RecordingConn { return &RecordingConn{} }

// NewFailingConn creates a connection whose every Send fails with err.
func NewFailingConn(err error) *RecordingConn { return &RecordingConn{err: err} }

// Send records data, or returns the configured error.
func (c *RecordingConn) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, append([]byte(nil), data...))
	return nil
}

// Frames returns the received frames as strings, in arrival order.
func (c *RecordingConn) Frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		out[i] = string(f)
	}
	return out
}

// Event is a decoded frame. Unused fields stay empty.
type Event struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Level   string `json:"level,omitempty"`
	Agent   string `json:"agent,omitempty"`
	Status  string `json:"status,omitempty"`
}

// Events decodes every received frame. Undecodable frames are skipped.
func (c *RecordingConn) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Event, 0, len(c.frames))
	for _, f := range c.frames {
		var ev Event
		if json.Unmarshal(f, &ev) == nil {
			out = append(out, ev)
		}
	}
	return out
}

// Statuses returns the agent_status values received for agent, in order.
func (c *RecordingConn) Statuses(agent string) []string {
	var out []string
	for _, ev := range c.Events() {
		if ev.Type == "agent_status" && ev.Agent == agent {
			out = append(out, ev.Status)
		}
	}
	return out
}

// Logs returns the messages of every received log event, in order.
func (c *RecordingConn) Logs() []string {
	var out []string
	for _, ev := range c.Events() {
		if ev.Type == "log" {
			out = append(out, ev.Message)
		}
	}
	return out
}

// BlockingConn never completes a Send until its context is done.
type BlockingConn struct{}

// Send blocks until ctx is cancelled and returns ctx.Err().
func (*BlockingConn) Send(ctx context.Context, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

// PanickingConn panics on every Send.
type PanickingConn struct{}

// Send panics.
func (*PanickingConn) Send(context.Context, []byte) error {
	panic("observer exploded")
}
