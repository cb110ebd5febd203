package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rebuild the scanner summaries from existing artifacts",
	Long: `Reads the latest point of every stored rotation series and rebuilds the
ranked scanner summary CSVs, without recomputing any series.

Example:
  go run ./cmd/rrg scan`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	agg := scanner.NewAggregator(a.store, a.cfg.Generation.OutputPrefix, a.log)

	for _, kind := range []contracts.SubjectKind{contracts.KindStock, contracts.KindSector} {
		subjects, err := listArtifactSubjects(ctx, a, kind)
		if err != nil {
			return fmt.Errorf("list %s artifacts: %w", kind, err)
		}
		if len(subjects) == 0 {
			fmt.Printf("No %s artifacts found, skipping\n", kind)
			continue
		}

		if _, err := agg.Run(ctx, kind, subjects); err != nil {
			return fmt.Errorf("build %s summary: %w", kind, err)
		}
		fmt.Printf("Wrote %s (%d subjects)\n", agg.SummaryPath(kind), len(subjects))
	}

	return nil
}

func listArtifactSubjects(ctx context.Context, a *app, kind contracts.SubjectKind) ([]string, error) {
	prefix := fmt.Sprintf("%s%s/", a.cfg.Generation.OutputPrefix, kind)
	paths, err := a.store.ListPaths(ctx, prefix)
	if err != nil {
		return nil, err
	}

	subjects := make([]string, 0, len(paths))
	for _, p := range paths {
		name := strings.TrimPrefix(p, prefix)
		if subject, ok := strings.CutSuffix(name, ".csv"); ok && !strings.Contains(subject, "/") {
			subjects = append(subjects, subject)
		}
	}
	return subjects, nil
}
