package scanner

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/rrg"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// SummaryHeader is the header row of a scanner summary file
const SummaryHeader = "Subject,RS-Ratio,RS-Momentum,Performance,Trend"

// Aggregator builds the cross-sectional scanner table for one universe. It
// reads only the latest stored point of each subject's previously written
// output; subjects with a missing, empty or header-only output are skipped.
type Aggregator struct {
	storage      contracts.Storage
	outputPrefix string
	logger       *logger.Logger
}

// NewAggregator creates a new scanner Aggregator
func NewAggregator(storage contracts.Storage, outputPrefix string, log *logger.Logger) *Aggregator {
	return &Aggregator{
		storage:      storage,
		outputPrefix: outputPrefix,
		logger:       log,
	}
}

// Run scans every subject of the given kind, ranks the survivors by
// RS-Ratio descending, uploads the summary table and returns its content.
func (a *Aggregator) Run(ctx context.Context, kind contracts.SubjectKind, subjects []string) (string, error) {
	rows := make([]contracts.ScannerRow, 0, len(subjects))
	skipped := 0

	for _, subject := range subjects {
		latest, ok := a.latestPoint(ctx, kind, subject)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, rrg.NewScannerRow(subject, latest))
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].RSRatio > rows[j].RSRatio
	})

	content := EncodeSummary(rows)
	path := a.SummaryPath(kind)
	if err := a.storage.UploadText(ctx, path, content, "text/csv"); err != nil {
		return "", fmt.Errorf("upload scanner summary: %w", err)
	}

	a.logger.WithFields(map[string]interface{}{
		"kind":    kind,
		"ranked":  len(rows),
		"skipped": skipped,
		"path":    path,
	}).Info("Scanner summary written")

	return content, nil
}

// SummaryPath returns the storage path of a kind's summary artifact
func (a *Aggregator) SummaryPath(kind contracts.SubjectKind) string {
	return fmt.Sprintf("%sscanner_%ss.csv", a.outputPrefix, kind)
}

// latestPoint reads position 0 of a subject's stored output. Any shape of
// missing data is a skip, never a run failure.
func (a *Aggregator) latestPoint(ctx context.Context, kind contracts.SubjectKind, subject string) (contracts.RRGPoint, bool) {
	path := fmt.Sprintf("%s%s/%s.csv", a.outputPrefix, kind, subject)

	content, err := a.storage.DownloadText(ctx, path)
	if err != nil {
		a.logger.WithFields(map[string]interface{}{
			"subject": subject,
			"path":    path,
			"kind":    contracts.Classify(err),
		}).Info("Skipping subject without readable output")
		return contracts.RRGPoint{}, false
	}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		a.logger.WithField("subject", subject).Info("Skipping subject with empty or header-only output")
		return contracts.RRGPoint{}, false
	}

	fields := strings.Split(strings.TrimSpace(lines[1]), ",")
	if len(fields) < 3 {
		a.logger.WithField("subject", subject).Info("Skipping subject with malformed output row")
		return contracts.RRGPoint{}, false
	}

	ratio, err1 := strconv.ParseFloat(fields[1], 64)
	momentum, err2 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil {
		a.logger.WithField("subject", subject).Info("Skipping subject with unparseable output row")
		return contracts.RRGPoint{}, false
	}

	return contracts.RRGPoint{Date: fields[0], RSRatio: ratio, RSMomentum: momentum}, true
}

// EncodeSummary serializes ranked scanner rows: RS values to 1 decimal,
// performance with an explicit sign and a trailing percent.
func EncodeSummary(rows []contracts.ScannerRow) string {
	var b strings.Builder
	b.WriteString(SummaryHeader)
	b.WriteByte('\n')
	for _, row := range rows {
		fmt.Fprintf(&b, "%s,%.1f,%.1f,%+.2f%%,%s\n",
			row.Subject, row.RSRatio, row.RSMomentum, row.Performance, row.Trend)
	}
	return b.String()
}
