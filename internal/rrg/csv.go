package rrg

import (
	"fmt"
	"strings"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

// OutputHeader is the header row of a per-subject RRG output file
const OutputHeader = "date,rs_ratio,rs_momentum"

// EncodeCSV serializes a result's trajectory as the per-subject output file:
// newest first, both values rounded to 2 decimals.
func EncodeCSV(result *contracts.RRGResult) string {
	var b strings.Builder
	b.WriteString(OutputHeader)
	b.WriteByte('\n')
	for _, p := range result.Trajectory {
		fmt.Fprintf(&b, "%s,%.2f,%.2f\n", p.Date, p.RSRatio, p.RSMomentum)
	}
	return b.String()
}
