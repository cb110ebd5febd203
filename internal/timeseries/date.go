package timeseries

import (
	"fmt"
	"time"
)

// Raw price files carry dates in one of two layouts. Dates are normalized
// to canonical YYYY-MM-DD exactly once, at ingestion; nothing downstream
// compares raw date strings.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
}

// NormalizeDate converts a raw date string to YYYY-MM-DD
func NormalizeDate(raw string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date: %q", raw)
}
