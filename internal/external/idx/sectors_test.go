package idx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintstechnology/bandarmolony-sub008/internal/sector"
)

func TestParseSectorTable(t *testing.T) {
	html := `<html><body>
	<table id="classification">
	  <tr><th>Ticker</th><th>Sector</th></tr>
	  <tr><td class="ticker">TLKM</td><td class="sector">Telecommunication</td></tr>
	  <tr><td class="ticker">BBRI</td><td class="sector">Financials</td></tr>
	  <tr><td class="ticker">BBCA</td><td class="sector">Financials</td></tr>
	  <tr><td class="ticker"> </td><td class="sector">Financials</td></tr>
	</table>
	</body></html>`

	sectors, err := ParseSectorTable(html)
	require.NoError(t, err)

	require.Len(t, sectors, 2)
	assert.Equal(t, []string{"BBCA", "BBRI"}, sectors["Financials"])
	assert.Equal(t, []string{"TLKM"}, sectors["Telecommunication"])
}

func TestParseSectorTableEmpty(t *testing.T) {
	_, err := ParseSectorTable("<html><body><p>maintenance</p></body></html>")
	assert.Error(t, err)
}

func TestEncodeMappingYAML(t *testing.T) {
	doc, err := EncodeMappingYAML(&sector.Mapping{
		Benchmark: "COMPOSITE",
		Sectors: map[string][]string{
			"Financials": {"BBCA", "BBRI"},
		},
	})
	require.NoError(t, err)

	parsed, err := sector.ParseMapping([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "COMPOSITE", parsed.Benchmark)
	assert.Equal(t, []string{"BBCA", "BBRI"}, parsed.Sectors["Financials"])
}

func TestEncodeBarsCSV(t *testing.T) {
	out := EncodeBarsCSV([]Bar{
		{Date: "2024-06-28", Open: 9000, High: 9150, Low: 8950, Close: 9100, Volume: 1200000},
		{Date: "2024-06-27", Open: 8900, High: 9050, Low: 8850, Close: 9000, Volume: 900000},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,open,high,low,close,volume", lines[0])
	assert.Equal(t, "2024-06-28,9000.00,9150.00,8950.00,9100.00,1200000", lines[1])
	assert.Equal(t, "2024-06-27,8900.00,9050.00,8850.00,9000.00,900000", lines[2])
}
