// Package enumerate produces the ordered cross-product of load dimensions
// (jurisdiction × vintage × level [× table]) as unit keys. Enumeration is
// pure: given the same plan it always yields the same sequence, and it never
// touches external state.
package enumerate

import (
	"fmt"
	"strings"

	"plbatch/internal/census"
)

// UnitKey identifies one invocation of the per-unit loader. Table is set only
// for population loads.
type UnitKey struct {
	FIPS    string `json:"fips"`
	Vintage string `json:"vintage"`
	Level   string `json:"level"`
	Table   string `json:"table,omitempty"`
}

// String renders the key as "fips/vintage/level" or "fips/vintage/level/table".
func (k UnitKey) String() string {
	if k.Table == "" {
		return fmt.Sprintf("%s/%s/%s", k.FIPS, k.Vintage, k.Level)
	}
	return fmt.Sprintf("%s/%s/%s/%s", k.FIPS, k.Vintage, k.Level, k.Table)
}

// Fields returns the key's components in ledger order (table omitted when
// absent).
func (k UnitKey) Fields() []string {
	fields := []string{k.FIPS, k.Vintage, k.Level}
	if k.Table != "" {
		fields = append(fields, k.Table)
	}
	return fields
}

func (k UnitKey) IsPopulation() bool { return k.Table != "" }

// GeometryKey returns the geometry unit paired with a population unit: the
// same jurisdiction, vintage, and level with no table.
func (k UnitKey) GeometryKey() UnitKey {
	k.Table = ""
	return k
}

// ParseKey parses a key previously rendered by Fields (tab- or
// slash-separated).
func ParseKey(s string) (UnitKey, error) {
	sep := "\t"
	if !strings.Contains(s, "\t") {
		sep = "/"
	}
	fields := strings.Split(strings.TrimSpace(s), sep)
	switch len(fields) {
	case 3:
		return UnitKey{FIPS: fields[0], Vintage: fields[1], Level: fields[2]}, nil
	case 4:
		return UnitKey{FIPS: fields[0], Vintage: fields[1], Level: fields[2], Table: fields[3]}, nil
	default:
		return UnitKey{}, fmt.Errorf("malformed unit key %q", s)
	}
}

// Exclusion suppresses matching units from a plan. An empty field matches
// anything.
type Exclusion struct {
	FIPS    string `yaml:"fips"`
	Level   string `yaml:"level"`
	Vintage string `yaml:"vintage"`
}

func (e Exclusion) matches(k UnitKey) bool {
	if e.FIPS != "" && e.FIPS != k.FIPS {
		return false
	}
	if e.Level != "" && e.Level != k.Level {
		return false
	}
	if e.Vintage != "" && e.Vintage != k.Vintage {
		return false
	}
	return true
}

// Plan is a declarative dimension set. Units iterates it jurisdiction-major
// (jurisdiction → vintage → level → table) so one jurisdiction's load
// finishes before the next begins; that is what makes per-jurisdiction
// resumption work.
type Plan struct {
	Jurisdictions []string
	Vintages      []string
	Levels        []string
	// Tables turns the plan into a population plan: each surviving
	// (jurisdiction, vintage, level) expands into one unit per table.
	Tables  []string
	Exclude []Exclusion
}

// Units enumerates the plan's unit keys in order. Datasets the Census never
// published (vtd gaps, tribal areas outside the vintage allow-list) are
// dropped, as are units matching an exclusion.
func (p Plan) Units() []UnitKey {
	var units []UnitKey
	for _, fips := range p.Jurisdictions {
		for _, vintage := range p.Vintages {
			for _, level := range p.Levels {
				base := UnitKey{FIPS: fips, Vintage: vintage, Level: level}
				if !census.DatasetPublished(fips, level, vintage) {
					continue
				}
				if p.excluded(base) {
					continue
				}
				if len(p.Tables) == 0 {
					units = append(units, base)
					continue
				}
				for _, table := range p.Tables {
					unit := base
					unit.Table = table
					units = append(units, unit)
				}
			}
		}
	}
	return units
}

func (p Plan) excluded(k UnitKey) bool {
	for _, e := range p.Exclude {
		if e.matches(k) {
			return true
		}
	}
	return false
}
