package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/gashibujar1988-crypto/Robotrna/internal/tracer"
	"github.com/gashibujar1988-crypto/Robotrna/logging"
)

// Options configures a Registry.
type Options struct {
	// Timeout bounds a single handler call. Zero disables the bound.
	Timeout time.Duration
	// Logger (defaults to NoOpLogger)
	Logger logging.Logger
}

// Registry maps tool names to handlers. It is populated by NewRegistry and
// read-only afterwards, so Execute needs no locking.
type Registry struct {
	tools map[string]Tool
	names []string
	opts  Options
}

// NewRegistry builds a Registry from tools. Duplicate or empty names are rejected.
func NewRegistry(tools []Tool, optFns ...func(o *Options)) (*Registry, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Registry{
		tools: make(map[string]Tool, len(tools)),
		names: make([]string, 0, len(tools)),
		opts:  opts,
	}

	for _, t := range tools {
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, dup := r.tools[name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		r.tools[name] = t
		r.names = append(r.names, name)
	}

	return r, nil
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Execute runs the named tool with input.
//
// Error Semantics:
//
//	unknown name              -> *Error{Code: CodeNotFound} listing the registered names
//	handler error / panic     -> *Error{Code: CodeExecution} wrapping the cause
//	timeout / ctx cancelled   -> *Error{Code: CodeExecution} wrapping ctx.Err()
func (r *Registry) Execute(ctx context.Context, name, input string) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "tool.execute",
		trace.WithAttributes(tracer.StringAttr("tool.name", name)),
	)
	defer span.End()

	t, ok := r.tools[name]
	if !ok {
		err := &Error{
			Tool:    name,
			Code:    CodeNotFound,
			Message: fmt.Sprintf("not found in registry; available tools: [%s]", strings.Join(r.names, ", ")),
		}
		r.opts.Logger.Warn("tool.execute.not_found", "tool", name)
		tracer.RecordError(span, err)
		return "", err
	}

	start := time.Now()
	out, err := r.call(ctx, t, input)
	logging.LogToolCall(r.opts.Logger, name, time.Since(start), err)

	if err != nil {
		tracer.RecordError(span, err)
		return "", err
	}

	tracer.SetOK(span)
	return out, nil
}

type callResult struct {
	out string
	err error
}

// call runs the handler in its own goroutine so a panic is recovered and a
// handler ignoring ctx cannot hold Execute past the deadline.
func (r *Registry) call(ctx context.Context, t Tool, input string) (string, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- callResult{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		out, err := t.Call(ctx, input)
		done <- callResult{out: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", wrapExecution(t.Name(), res.err)
		}
		return res.out, nil
	case <-ctx.Done():
		return "", wrapExecution(t.Name(), ctx.Err())
	}
}

func wrapExecution(name string, err error) error {
	if te, ok := err.(*Error); ok {
		return te
	}
	return &Error{
		Tool:    name,
		Code:    CodeExecution,
		Message: err.Error(),
		Err:     err,
	}
}
