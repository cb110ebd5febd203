package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation pass and exit",
	Long: `Runs the full generation pipeline once: enumerates stocks and sectors,
computes the rotation series for every subject that does not already have
an artifact, and refreshes the scanner summaries.

Example:
  go run ./cmd/rrg generate
  go run ./cmd/rrg generate --force`,
	RunE: runGenerate,
}

var generateForce bool

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&generateForce, "force", false, "recompute subjects that already have artifacts")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.orchestrator.Run(context.Background(), generateForce, contracts.TriggerManual); err != nil {
		return fmt.Errorf("generation run: %w", err)
	}

	counters := a.orchestrator.Status().Counters
	fmt.Printf("Processed %d subjects: %d created, %d skipped, %d failed\n",
		counters.Processed, counters.Created, counters.Skipped, counters.Failed)
	return nil
}
