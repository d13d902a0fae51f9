package census

// OutlyingTerritories aren't part of the core PL 94-171 release, but data is
// still available for most levels.
var OutlyingTerritories = []string{
	"60", // American Samoa
	"66", // Guam
	"69", // Northern Mariana Islands
	"78", // U.S. Virgin Islands
}

// jurisdictionNames maps 2-digit FIPS codes to display names. The roster is
// the 50 states, DC, Puerto Rico, and the outlying territories.
var jurisdictionNames = map[string]string{
	"01": "Alabama",
	"02": "Alaska",
	"04": "Arizona",
	"05": "Arkansas",
	"06": "California",
	"08": "Colorado",
	"09": "Connecticut",
	"10": "Delaware",
	"11": "District of Columbia",
	"12": "Florida",
	"13": "Georgia",
	"15": "Hawaii",
	"16": "Idaho",
	"17": "Illinois",
	"18": "Indiana",
	"19": "Iowa",
	"20": "Kansas",
	"21": "Kentucky",
	"22": "Louisiana",
	"23": "Maine",
	"24": "Maryland",
	"25": "Massachusetts",
	"26": "Michigan",
	"27": "Minnesota",
	"28": "Mississippi",
	"29": "Missouri",
	"30": "Montana",
	"31": "Nebraska",
	"32": "Nevada",
	"33": "New Hampshire",
	"34": "New Jersey",
	"35": "New Mexico",
	"36": "New York",
	"37": "North Carolina",
	"38": "North Dakota",
	"39": "Ohio",
	"40": "Oklahoma",
	"41": "Oregon",
	"42": "Pennsylvania",
	"44": "Rhode Island",
	"45": "South Carolina",
	"46": "South Dakota",
	"47": "Tennessee",
	"48": "Texas",
	"49": "Utah",
	"50": "Vermont",
	"51": "Virginia",
	"53": "Washington",
	"54": "West Virginia",
	"55": "Wisconsin",
	"56": "Wyoming",
	"60": "American Samoa",
	"66": "Guam",
	"69": "Northern Mariana Islands",
	"72": "Puerto Rico",
	"78": "U.S. Virgin Islands",
}

// jurisdictionOrder lists every jurisdiction in ascending FIPS order.
var jurisdictionOrder = []string{
	"01", "02", "04", "05", "06", "08", "09", "10", "11", "12",
	"13", "15", "16", "17", "18", "19", "20", "21", "22", "23",
	"24", "25", "26", "27", "28", "29", "30", "31", "32", "33",
	"34", "35", "36", "37", "38", "39", "40", "41", "42", "44",
	"45", "46", "47", "48", "49", "50", "51", "53", "54", "55",
	"56", "60", "66", "69", "72", "78",
}

// Jurisdictions returns every known jurisdiction FIPS code in ascending order.
func Jurisdictions() []string {
	out := make([]string, len(jurisdictionOrder))
	copy(out, jurisdictionOrder)
	return out
}

func KnownJurisdiction(fips string) bool {
	_, ok := jurisdictionNames[fips]
	return ok
}

// JurisdictionName returns the display name for a FIPS code.
func JurisdictionName(fips string) (string, bool) {
	name, ok := jurisdictionNames[fips]
	return name, ok
}
