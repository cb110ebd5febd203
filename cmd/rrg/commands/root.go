package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rrg",
	Short: "Relative rotation graph generator for IDX equities",
	Long: `Bandarmolony RRG service

Computes RS-Ratio / RS-Momentum series for every stock and sector against
the composite benchmark, publishes the CSV artifacts to blob storage, and
serves them over HTTP.

Usage:
  go run ./cmd/rrg [command]

Examples:
  go run ./cmd/rrg api
  go run ./cmd/rrg generate --force
  go run ./cmd/rrg scan
  go run ./cmd/rrg fetch BBCA TLKM`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
