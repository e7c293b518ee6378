// Package main provides the safetyscore CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalOpts

	rootCmd := &cobra.Command{
		Use:   "safetyscore",
		Short: "Warehouse safety incident scoring",
		Long: `safetyscore reads the daily incident logs written by edge cameras, scores
them against the safety rule table and reports day, week and month scores.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config file (default: find .safetyscore/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newScoresCmd(&g),
		newIncidentsCmd(&g),
		newExportCmd(&g),
		newRulesCmd(&g),
		newServeCmd(&g),
	)
	return rootCmd
}
