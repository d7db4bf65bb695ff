package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaiopt "github.com/openai/openai-go/option"

	"github.com/gashibujar1988-crypto/Robotrna/config"
	"github.com/gashibujar1988-crypto/Robotrna/logging"
	"github.com/gashibujar1988-crypto/Robotrna/model"
	"github.com/gashibujar1988-crypto/Robotrna/model/anthropic"
	"github.com/gashibujar1988-crypto/Robotrna/model/gemini"
	"github.com/gashibujar1988-crypto/Robotrna/model/openai"
)

// errDisabled marks a backend whose provider is "none" or empty.
var errDisabled = errors.New("backend disabled")

const defaultResolveTimeout = 15 * time.Second

// NewFromConfig builds a Router from the models section of the config.
//
// A backend that cannot be built (disabled, missing API key, client error) is
// skipped with one warning so the other keeps working. A router with no
// backends is still returned; its calls fail with ErrNoBackend.
func NewFromConfig(ctx context.Context, cfg config.ModelsConfig, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	primary, err := buildBackend(ctx, "primary", cfg.Primary, cfg.Breaker, logger)
	if err != nil {
		logger.Warn("router.backend_unavailable", "backend", "primary", "error", err)
	}

	secondary, err := buildBackend(ctx, "secondary", cfg.Secondary, cfg.Breaker, logger)
	if err != nil && !errors.Is(err, errDisabled) {
		logger.Warn("router.backend_unavailable", "backend", "secondary", "error", err)
	}

	switch {
	case primary == nil && secondary == nil:
		logger.Error("router.no_backends")
	case primary == nil || secondary == nil:
		logger.Warn("router.single_backend_mode")
	}

	return New(primary, secondary, func(o *Options) { o.Logger = logger })
}

func buildBackend(ctx context.Context, name string, bc config.BackendConfig, breaker config.BreakerConfig, logger logging.Logger) (*Backend, error) {
	if !bc.Enabled() {
		return nil, errDisabled
	}
	bc = bc.WithProviderDefaults()
	if bc.APIKey == "" {
		return nil, fmt.Errorf("%s: missing api key (set %s)", bc.Provider, config.EnvKeyFor(bc.Provider))
	}

	candidates := bc.Candidates
	if bc.Model != "" {
		candidates = append([]string{bc.Model}, bc.Candidates...)
	}

	resolve := func(l model.Lister) string {
		rctx, cancel := context.WithTimeout(ctx, defaultResolveTimeout)
		defer cancel()

		id, err := model.Resolve(rctx, l, candidates, bc.StableModel)
		if err != nil {
			logger.Warn("router.model_fallback",
				"backend", name,
				"provider", bc.Provider,
				"model", id,
				"error", err,
			)
		}
		return id
	}

	var m model.Model

	switch bc.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, bc.APIKey, bc.BaseURL)
		if err != nil {
			return nil, err
		}
		id := resolve(model.ListerFunc(func(ctx context.Context) ([]string, error) {
			return gemini.ListModels(ctx, client)
		}))
		m = gemini.NewModelFromClient(client, func(o *gemini.Options) {
			o.Model = id
			o.Temperature = float32(bc.Temperature)
			o.MaxOutputTokens = int32(bc.MaxTokens)
		})
	case config.ProviderOpenAI:
		var opts []openaiopt.RequestOption
		if bc.BaseURL != "" {
			opts = append(opts, openaiopt.WithBaseURL(bc.BaseURL))
		}
		client := openai.NewClient(bc.APIKey, opts...)
		id := resolve(model.ListerFunc(func(ctx context.Context) ([]string, error) {
			return openai.ListModels(ctx, client)
		}))
		m = openai.NewModelFromClient(client, func(o *openai.Options) {
			o.Model = id
			o.Temperature = bc.Temperature
			o.MaxCompletionTokens = bc.MaxTokens
		})
	case config.ProviderAnthropic:
		var opts []anthropicopt.RequestOption
		if bc.BaseURL != "" {
			opts = append(opts, anthropicopt.WithBaseURL(bc.BaseURL))
		}
		client := anthropic.NewClient(bc.APIKey, opts...)
		id := resolve(model.ListerFunc(func(ctx context.Context) ([]string, error) {
			return anthropic.ListModels(ctx, client)
		}))
		m = anthropic.NewModelFromClient(client, func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(id)
			o.Temperature = bc.Temperature
			o.MaxTokens = bc.MaxTokens
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", bc.Provider)
	}

	if m.Info().Name == "" {
		return nil, fmt.Errorf("%s: no model id resolved and no stable_model configured", bc.Provider)
	}

	logger.Info("router.backend_ready",
		"backend", name,
		"provider", bc.Provider,
		"model", m.Info().Name,
	)

	return NewBackend(name, m, func(o *BackendOptions) {
		o.Timeout = bc.Timeout
		o.Breaker = breaker
		o.Logger = logger
	}), nil
}
