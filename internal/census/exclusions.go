package census

// datasetKey identifies one (jurisdiction, level, vintage) dataset in the
// Census release.
type datasetKey struct {
	fips    string
	level   string
	vintage string
}

// missingDatasets lists datasets the Census never published. A few states
// don't participate (or didn't historically participate) in VTD releases,
// and outlying territories typically don't have Census VTDs either.
var missingDatasets = map[datasetKey]struct{}{
	// California 2020 VTDs: not available from the Census. Statewide Database
	// (CA only) doesn't seem to have them, and Redistricting Data Hub's
	// publication is spurious (every VTD is named "Voting Districts not
	// defined").
	{"06", LevelVTD, "2020"}: {},
	// Hawaii 2020 VTDs: not available from the Census.
	{"15", LevelVTD, "2020"}: {},
	// Kentucky 2010 VTDs: not available from the Census.
	{"21", LevelVTD, "2010"}: {},
	// Oregon 2020 VTDs: not available from the Census.
	{"41", LevelVTD, "2020"}: {},
	// Rhode Island 2010 VTDs: not available from the Census.
	{"44", LevelVTD, "2010"}: {},
	// Outlying territories.
	{"60", LevelVTD, "2010"}: {},
	{"60", LevelVTD, "2020"}: {},
	{"66", LevelVTD, "2010"}: {},
	{"66", LevelVTD, "2020"}: {},
	{"69", LevelVTD, "2010"}: {},
	{"69", LevelVTD, "2020"}: {},
	{"78", LevelVTD, "2010"}: {},
	{"78", LevelVTD, "2020"}: {},
}

// aiannhFIPS lists, per vintage, the jurisdictions with AIANNH areas in that
// vintage's TIGER release. The 2020 roster adds Virginia: several Virginia
// tribes were federally recognized between the two censuses.
var aiannhFIPS = map[string][]string{
	"2010": {
		"01", "02", "04", "06", "08", "09", "12", "15", "16", "19",
		"20", "22", "23", "25", "26", "27", "28", "30", "31", "32",
		"35", "36", "37", "38", "40", "41", "44", "45", "46", "48",
		"49", "53", "55", "56",
	},
	"2020": {
		"01", "02", "04", "06", "08", "09", "12", "15", "16", "19",
		"20", "22", "23", "25", "26", "27", "28", "30", "31", "32",
		"35", "36", "37", "38", "40", "41", "44", "45", "46", "48",
		"49", "51", "53", "55", "56",
	},
}

// AIANNHJurisdictions returns the vintage's allow-list of jurisdictions with
// tribal-area datasets, in ascending FIPS order.
func AIANNHJurisdictions(vintage string) []string {
	list := aiannhFIPS[vintage]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// DatasetPublished reports whether the Census published a dataset for the
// given jurisdiction, level, and vintage. Tribal-area datasets exist only for
// the vintage's allow-list; a handful of VTD datasets were never released.
func DatasetPublished(fips, level, vintage string) bool {
	if _, missing := missingDatasets[datasetKey{fips, level, vintage}]; missing {
		return false
	}
	if level == LevelAIANNH {
		for _, allowed := range aiannhFIPS[vintage] {
			if allowed == fips {
				return true
			}
		}
		return false
	}
	return true
}
