package sector

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

// Mapping is the sector classification document stored alongside the raw
// datasets (mapping/sectors.yaml):
//
//	benchmark: COMPOSITE
//	sectors:
//	  Banking: [BBCA, BBRI, BMRI, BBNI]
//	  Telco: [TLKM, ISAT, EXCL]
type Mapping struct {
	Benchmark string              `yaml:"benchmark"`
	Sectors   map[string][]string `yaml:"sectors"`
}

// ParseMapping parses the YAML sector mapping document
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse sector mapping: %w", err)
	}
	if len(m.Sectors) == 0 {
		return nil, fmt.Errorf("sector mapping has no sectors")
	}
	return &m, nil
}

// SectorNames returns all sector names in deterministic order
func (m *Mapping) SectorNames() []string {
	names := make([]string, 0, len(m.Sectors))
	for name := range m.Sectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Constituents returns the tickers mapped to a sector
func (m *Mapping) Constituents(name string) ([]string, error) {
	tickers, ok := m.Sectors[name]
	if !ok || len(tickers) == 0 {
		return nil, &contracts.SubjectNotFoundError{Subject: name}
	}
	return tickers, nil
}
