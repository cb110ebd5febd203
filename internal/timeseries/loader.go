package timeseries

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// Loader parses one instrument's raw tabular price history into a
// date/close series.
type Loader struct {
	logger *logger.Logger
}

// NewLoader creates a new Loader
func NewLoader(log *logger.Logger) *Loader {
	return &Loader{logger: log}
}

// Load parses raw CSV text for one subject. The header row must contain a
// date/time column and a close column (case-insensitive). Rows with a
// missing or unparseable date, or a non-finite close, are dropped silently.
// Row order is preserved; files are stored newest first.
func (l *Loader) Load(subject, raw string) (contracts.TimeSeries, error) {
	series := contracts.TimeSeries{Subject: subject}

	if strings.TrimSpace(raw) == "" {
		return series, &contracts.DataFormatError{Subject: subject, Reason: "empty input"}
	}

	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return series, &contracts.DataFormatError{Subject: subject, Reason: "unreadable header: " + err.Error()}
	}

	dateIdx, closeIdx := -1, -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(stripBOM(col)))
		switch name {
		case "date", "time":
			if dateIdx < 0 {
				dateIdx = i
			}
		case "close":
			closeIdx = i
		}
	}
	if dateIdx < 0 {
		return series, &contracts.DataFormatError{Subject: subject, Reason: "missing date/time column"}
	}
	if closeIdx < 0 {
		return series, &contracts.DataFormatError{Subject: subject, Reason: "missing close column"}
	}

	dropped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, drop and keep going
			dropped++
			continue
		}
		if dateIdx >= len(record) || closeIdx >= len(record) {
			dropped++
			continue
		}

		date, err := NormalizeDate(strings.TrimSpace(record[dateIdx]))
		if err != nil {
			dropped++
			continue
		}

		closeVal, err := parseNumeric(record[closeIdx])
		if err != nil || math.IsNaN(closeVal) || math.IsInf(closeVal, 0) {
			dropped++
			continue
		}

		series.Points = append(series.Points, contracts.PricePoint{
			Date:  date,
			Close: closeVal,
		})
	}

	if dropped > 0 {
		l.logger.WithFields(map[string]interface{}{
			"subject": subject,
			"dropped": dropped,
			"kept":    len(series.Points),
		}).Debug("Dropped unusable rows while loading series")
	}

	return series, nil
}

// parseNumeric parses a float field, stripping thousands separators
func parseNumeric(field string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(field), ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

// stripBOM removes a leading UTF-8 byte-order mark
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
