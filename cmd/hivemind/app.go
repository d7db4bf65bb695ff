package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gashibujar1988-crypto/Robotrna/agent"
	"github.com/gashibujar1988-crypto/Robotrna/broadcast"
	"github.com/gashibujar1988-crypto/Robotrna/config"
	"github.com/gashibujar1988-crypto/Robotrna/council"
	"github.com/gashibujar1988-crypto/Robotrna/internal/tracer"
	"github.com/gashibujar1988-crypto/Robotrna/logging"
	"github.com/gashibujar1988-crypto/Robotrna/orchestrator"
	"github.com/gashibujar1988-crypto/Robotrna/router"
	"github.com/gashibujar1988-crypto/Robotrna/tool"
	"github.com/gashibujar1988-crypto/Robotrna/tool/builtin"
)

// app is the composition root shared by the subcommands.
type app struct {
	cfg         *config.Config
	logger      logging.Logger
	agents      *agent.Registry
	tools       *tool.Registry
	router      *router.Router
	broadcaster *broadcast.Broadcaster
	orch        *orchestrator.Orchestrator

	shutdownTracer func(context.Context) error
}

// newApp loads configuration and wires every component. Logs go to logOut.
func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    logOut,
		Component: "hivemind",
	})

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	agents, err := loadAgents(cfg.Agents)
	if err != nil {
		return nil, err
	}

	builtins := builtin.Tools(func(o *builtin.Options) {
		o.Search = builtin.SearchOptions{
			APIKey:   cfg.Tools.Search.APIKey,
			EngineID: cfg.Tools.Search.EngineID,
			Endpoint: cfg.Tools.Search.Endpoint,
			Results:  cfg.Tools.Search.Results,
		}
	})

	tools, err := tool.NewRegistry(builtins, func(o *tool.Options) {
		o.Timeout = cfg.Tools.Timeout
		o.Logger = logger
	})
	if err != nil {
		return nil, fmt.Errorf("tools: %w", err)
	}

	r := router.NewFromConfig(ctx, cfg.Models, logger)

	b := broadcast.New(func(o *broadcast.Options) {
		o.SendTimeout = cfg.Broadcast.SendTimeout
		o.Logger = logger
	})

	c := council.New(r, b, func(o *council.Options) { o.Logger = logger })

	orch, err := orchestrator.New(orchestrator.Deps{
		Agents:    agents,
		Tools:     tools,
		Completer: r,
		Council:   c,
		Events:    b,
	}, func(o *orchestrator.Options) { o.Logger = logger })
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:            cfg,
		logger:         logger,
		agents:         agents,
		tools:          tools,
		router:         r,
		broadcaster:    b,
		orch:           orch,
		shutdownTracer: shutdownTracer,
	}, nil
}

func loadAgents(cfg config.AgentsConfig) (*agent.Registry, error) {
	if cfg.File == "" {
		return agent.Default(), nil
	}
	agents, err := agent.LoadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("agents: %w", err)
	}
	return agents, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.broadcaster.Flush(ctx); err != nil {
		a.logger.Warn("broadcast.flush_failed", "error", err)
	}
	a.broadcaster.Close()
	if err := a.shutdownTracer(ctx); err != nil {
		a.logger.Warn("tracer.shutdown_failed", "error", err)
	}
}
