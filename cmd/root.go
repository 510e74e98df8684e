// Package cmd defines and implements the CLI commands for the feedboard executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedboard",
		Short: "RSS article aggregation dashboard backend.",
		Long: `feedboard serves the JSON API behind the RSS aggregation dashboard:
a public reading surface over the Postgres article store and a
cookie-gated admin surface for managing sources and triggering the
external scraping backend.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/feedboard)")

	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
