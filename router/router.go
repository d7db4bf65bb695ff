// Package router implements the dual-backend model router. Every call names a
// backend preference; the router picks a backend, and when the secondary
// backend fails it retries the same request once on the primary.
package router

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"

	"github.com/gashibujar1988-crypto/Robotrna/internal/tracer"
	"github.com/gashibujar1988-crypto/Robotrna/logging"
	"github.com/gashibujar1988-crypto/Robotrna/model"
)

var (
	// ErrNoBackend is returned when no backend is configured.
	ErrNoBackend = errors.New("no model backend available")
	// ErrEmptyCompletion is returned when a backend answers with blank text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// Preference selects the backend a call should prefer.
type Preference int

const (
	// Auto lets the router choose; it behaves like Primary.
	Auto Preference = iota
	Primary
	Secondary
)

// String returns the preference name used in logs and spans.
func (p Preference) String() string {
	switch p {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "auto"
	}
}

// Call is one stateless completion request.
type Call struct {
	Role       string
	Prompt     string
	Preference Preference
}

// Options configures a Router.
type Options struct {
	// Logger (defaults to NoOpLogger)
	Logger logging.Logger
}

// Router selects between a primary and an optional secondary backend.
// It holds no per-call state and is safe for concurrent use.
type Router struct {
	primary   *Backend
	secondary *Backend
	opts      Options
}

// New creates a Router. Either backend may be nil; a router with neither
// answers every call with ErrNoBackend.
func New(primary, secondary *Backend, optFns ...func(o *Options)) *Router {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Router{
		primary:   primary,
		secondary: secondary,
		opts:      opts,
	}
}

// Primary returns the primary backend, or nil.
func (r *Router) Primary() *Backend { return r.primary }

// Secondary returns the secondary backend, or nil.
func (r *Router) Secondary() *Backend { return r.secondary }

// Complete runs call against the selected backend.
//
// Selection:
//
//	Secondary preference, secondary present -> secondary, primary as fallback
//	otherwise, primary present              -> primary, no fallback
//	otherwise, secondary present            -> secondary (single-backend mode)
//	neither                                 -> ErrNoBackend
//
// A failed primary call is never retried on the secondary.
func (r *Router) Complete(ctx context.Context, call Call) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "router.complete",
		trace.WithAttributes(
			tracer.StringAttr("router.preference", call.Preference.String()),
			tracer.StringAttr("router.role", call.Role),
		),
	)
	defer span.End()

	first, fallback := r.selectBackend(call.Preference)
	if first == nil {
		tracer.RecordError(span, ErrNoBackend)
		return "", ErrNoBackend
	}

	req := model.Request{Role: call.Role, Prompt: call.Prompt}

	text, err := first.generate(ctx, req, r.opts.Logger)
	if err != nil && fallback != nil {
		r.opts.Logger.Warn("router.fallback",
			"from", first.Name(),
			"to", fallback.Name(),
			"error", err,
		)
		span.AddEvent("fallback")
		text, err = fallback.generate(ctx, req, r.opts.Logger)
	}

	if err != nil {
		tracer.RecordError(span, err)
		return "", err
	}

	tracer.SetOK(span)
	return text, nil
}

func (r *Router) selectBackend(p Preference) (first, fallback *Backend) {
	switch {
	case p == Secondary && r.secondary != nil:
		return r.secondary, r.primary
	case r.primary != nil:
		return r.primary, nil
	default:
		return r.secondary, nil
	}
}
