package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hivemind",
	Short: "Hive mind agent orchestrator",
	Long: `Hivemind routes tasks to named agents. The orchestrator agent, Mother,
deliberates through a four-stage council; every other agent decides whether
to call one of its tools and answers directly.

Progress and agent status changes stream to dashboards over /ws/logs.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./hivemind.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(agentsCmd)
}
