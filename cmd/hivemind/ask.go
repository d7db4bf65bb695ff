package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gashibujar1988-crypto/Robotrna/agent"
	"github.com/gashibujar1988-crypto/Robotrna/config"
	"github.com/gashibujar1988-crypto/Robotrna/orchestrator"
)

var askAgent string

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Run one request in-process and print its progress",
	Long: `Ask sends a single message to an agent without starting the server.
Status events are printed as they happen, followed by the final answer.

Examples:
  hivemind ask "plan my product launch"
  hivemind ask --agent Hunter "find me 3 leads in Austin"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// Structured logs go to stderr so stdout only carries the console view.
		a, err := newApp(ctx, os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.close(closeCtx)
		}()

		out := cmd.OutOrStdout()
		a.broadcaster.Attach(newConsoleConn(out))

		resp := a.orch.Process(ctx, orchestrator.Request{
			Message:   strings.Join(args, " "),
			AgentName: askAgent,
		})

		// Print the last progress events before the answer.
		if err := a.broadcaster.Flush(ctx); err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s\n%s\n", color.New(color.Bold).Sprint("Answer:"), resp.Response)
		return nil
	},
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List registered agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := agentsFromConfig()
		if err != nil {
			return err
		}
		printAgents(cmd.OutOrStdout(), reg.Profiles())
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askAgent, "agent", "a", agent.OrchestratorName, "Agent to address")
}

func agentsFromConfig() (*agent.Registry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return loadAgents(cfg.Agents)
}

func printAgents(w io.Writer, profiles []agent.Profile) {
	name := color.New(color.FgCyan, color.Bold)
	for _, p := range profiles {
		tools := "-"
		if len(p.AllowedTools) > 0 {
			tools = strings.Join(p.AllowedTools, ", ")
		}
		fmt.Fprintf(w, "%s  %s\n    tools: %s\n", name.Sprintf("%-8s", p.Name), p.Role, tools)
	}
}
