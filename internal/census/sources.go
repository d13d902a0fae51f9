package census

import "strings"

// layerSourceURLs maps "<level>/<vintage>" to the TIGER shapefile URL
// template for that dataset. "{fips}" is substituted with the jurisdiction
// code. 2010 VTDs ship with the TIGER2012 release; everything else comes from
// TIGER2020PL.
var layerSourceURLs = map[string]string{
	"block/2010":  "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/TABBLOCK/2010/tl_2020_{fips}_tabblock10.zip",
	"block/2020":  "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/TABBLOCK/2020/tl_2020_{fips}_tabblock20.zip",
	"bg/2010":     "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/BG/2010/tl_2020_{fips}_bg10.zip",
	"bg/2020":     "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/BG/2020/tl_2020_{fips}_bg20.zip",
	"tract/2010":  "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/TRACT/2010/tl_2020_{fips}_tract10.zip",
	"tract/2020":  "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/TRACT/2020/tl_2020_{fips}_tract20.zip",
	"county/2010": "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/COUNTY/2010/tl_2020_{fips}_county10.zip",
	"county/2020": "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/COUNTY/2020/tl_2020_{fips}_county20.zip",
	"state/2010":  "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/STATE/2010/tl_2020_{fips}_state10.zip",
	"state/2020":  "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/STATE/2020/tl_2020_{fips}_state20.zip",
	"vtd/2010":    "https://www2.census.gov/geo/tiger/TIGER2012/VTD/tl_2012_{fips}_vtd10.zip",
	"vtd/2020":    "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/VTD/2020/tl_2020_{fips}_vtd20.zip",
	"place/2010":  "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/PLACE/2010/tl_2020_{fips}_place10.zip",
	"place/2020":  "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/PLACE/2020/tl_2020_{fips}_place20.zip",
	"cousub/2010": "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/COUSUB/2010/tl_2020_{fips}_cousub10.zip",
	"cousub/2020": "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/COUSUB/2020/tl_2020_{fips}_cousub20.zip",
	"aiannh/2010": "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/AIANNH/2010/tl_2020_{fips}_aiannh10.zip",
	"aiannh/2020": "https://www2.census.gov/geo/tiger/TIGER2020PL/LAYER/AIANNH/2020/tl_2020_{fips}_aiannh20.zip",
}

// populationSourceURL is the Census API endpoint the population-table loader
// reads from.
const populationSourceURL = "https://api.census.gov/data/{vintage}/dec/pl"

// GeometrySourceURL returns the TIGER shapefile URL for one geometry dataset.
func GeometrySourceURL(level, vintage, fips string) (string, bool) {
	tmpl, ok := layerSourceURLs[level+"/"+vintage]
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(tmpl, "{fips}", fips), true
}

// PopulationSourceURL returns the Census API base URL for a vintage's
// PL 94-171 tables.
func PopulationSourceURL(vintage string) string {
	return strings.ReplaceAll(populationSourceURL, "{vintage}", vintage)
}
