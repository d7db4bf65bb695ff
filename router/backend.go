package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/gashibujar1988-crypto/Robotrna/config"
	"github.com/gashibujar1988-crypto/Robotrna/logging"
	"github.com/gashibujar1988-crypto/Robotrna/model"
)

// Default circuit breaker settings.
const (
	defaultMaxFailures uint32        = 5
	defaultOpenTimeout time.Duration = 30 * time.Second
	defaultInterval    time.Duration = 60 * time.Second
)

// Backend is one text-completion provider guarded by a circuit breaker and
// an optional per-call timeout.
type Backend struct {
	name    string
	model   model.Model
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[*model.Response]
}

// BackendOptions configures a Backend.
type BackendOptions struct {
	// Timeout bounds a single Generate call. Zero disables the bound.
	Timeout time.Duration
	// Breaker configures the circuit breaker. Zero fields take defaults.
	Breaker config.BreakerConfig
	// Logger receives breaker state changes (defaults to NoOpLogger)
	Logger logging.Logger
}

// NewBackend wraps m. The name labels logs, spans and errors ("primary", "secondary").
func NewBackend(name string, m model.Model, optFns ...func(o *BackendOptions)) *Backend {
	opts := BackendOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	maxFailures := opts.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	openTimeout := opts.Breaker.Timeout
	if openTimeout == 0 {
		openTimeout = defaultOpenTimeout
	}
	interval := opts.Breaker.Interval
	if interval == 0 {
		interval = defaultInterval
	}

	logger := opts.Logger
	cb := gobreaker.NewCircuitBreaker[*model.Response](gobreaker.Settings{
		Name:        "backend:" + name,
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("router.breaker.state_change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Backend{
		name:    name,
		model:   m,
		timeout: opts.Timeout,
		breaker: cb,
	}
}

// Name returns the backend label.
func (b *Backend) Name() string { return b.name }

// Info returns the wrapped model's metadata.
func (b *Backend) Info() model.Info { return b.model.Info() }

// State returns the current circuit breaker state.
func (b *Backend) State() gobreaker.State { return b.breaker.State() }

func (b *Backend) generate(ctx context.Context, req model.Request, logger logging.Logger) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := b.breaker.Execute(func() (*model.Response, error) {
		resp, err := b.model.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(resp.Text) == "" {
			return nil, ErrEmptyCompletion
		}
		return resp, nil
	})
	logging.LogModelCall(logger, b.name, b.model.Info().Name, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("backend %q circuit open: %w", b.name, err)
		}
		return "", fmt.Errorf("backend %q: %w", b.name, err)
	}

	return resp.Text, nil
}
