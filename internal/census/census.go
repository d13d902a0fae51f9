// Package census holds the PL 94-171 domain constants: geographic levels,
// population tables, vintages, the jurisdiction roster, and the exclusion
// tables that describe which datasets the Census actually published.
package census

import "fmt"

// Geographic level tags as used by the per-unit loader and the TIGER release.
const (
	LevelBlock      = "block"
	LevelBlockGroup = "bg"
	LevelTract      = "tract"
	LevelCounty     = "county"
	LevelState      = "state"
	LevelVTD        = "vtd"
	LevelPlace      = "place"
	LevelCousub     = "cousub"
	LevelAIANNH     = "aiannh" // American Indian/Alaska Native/Native Hawaiian Areas
)

// SpineLevels are the central-spine levels of the PL 94-171 release,
// finest to coarsest.
var SpineLevels = []string{LevelBlock, LevelBlockGroup, LevelTract, LevelCounty, LevelState}

// AuxiliaryLevels are levels auxiliary to the central spine.
var AuxiliaryLevels = []string{LevelVTD, LevelPlace, LevelCousub, LevelAIANNH}

// Levels returns every supported level, spine levels first.
func Levels() []string {
	out := make([]string, 0, len(SpineLevels)+len(AuxiliaryLevels))
	out = append(out, SpineLevels...)
	out = append(out, AuxiliaryLevels...)
	return out
}

// CoreLevels returns the levels of the "core" bootstrap pass. Block-level
// geometry is excluded from core: it dwarfs everything else in volume and is
// only needed for the full load.
func CoreLevels() []string {
	var out []string
	for _, level := range Levels() {
		if level == LevelBlock {
			continue
		}
		out = append(out, level)
	}
	return out
}

// Tables are the PL 94-171 population summary tables.
var Tables = []string{"P1", "P2", "P3", "P4"}

// Vintages are the census release years covered by the PL 94-171 release.
var Vintages = []string{"2010", "2020"}

func ValidLevel(level string) bool {
	for _, l := range Levels() {
		if l == level {
			return true
		}
	}
	return false
}

func ValidTable(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}

func ValidVintage(vintage string) bool {
	for _, v := range Vintages {
		if v == vintage {
			return true
		}
	}
	return false
}

// Namespace returns the per-vintage store namespace, e.g. "census.2020".
func Namespace(vintage string) string {
	return fmt.Sprintf("census.%s", vintage)
}
