package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gashibujar1988-crypto/Robotrna/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and event stream",
	Long: `Serve starts the HTTP server:

  GET  /            health check
  POST /api/chat    {"message": "...", "agent_name": "Hunter"}
  GET  /api/agents  registered agents
  GET  /ws/logs     WebSocket event stream

It runs until interrupted (SIGINT or SIGTERM).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, os.Stdout)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.close(closeCtx)
		}()

		addr := a.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(a.orch, a.broadcaster, a.agents, func(o *server.Options) {
			o.Addr = addr
			o.AllowedOrigins = a.cfg.Server.AllowedOrigins
			o.ReadHeaderTimeout = a.cfg.Server.ReadHeaderTimeout
			o.ShutdownTimeout = a.cfg.Server.ShutdownTimeout
			o.Logger = a.logger
		})

		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
