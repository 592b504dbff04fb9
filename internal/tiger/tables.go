// Package tiger reads Census TIGER/Line shapefiles into domain values:
// AREAWATER records become water features, COUSUB records become town
// boundaries.
package tiger

import "sort"

// Layer describes a TIGER/Line shapefile layer and the DBF fields the
// reader extracts from it.
type Layer struct {
	Name   string
	Fields []string
}

// Layers lists the TIGER/Line layers the pipeline consumes.
var Layers = []Layer{
	{
		Name:   "AREAWATER",
		Fields: []string{"hydroid", "fullname", "awater"},
	},
	{
		Name:   "COUSUB",
		Fields: []string{"geoid", "name", "statefp", "countyfp", "aland", "awater"},
	},
}

// LayerByName looks up a layer by its TIGER product name.
func LayerByName(name string) (Layer, bool) {
	for _, l := range Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// VermontCounties maps the 3-digit COUNTYFP codes of Vermont's 14 counties
// to their names.
var VermontCounties = map[string]string{
	"001": "Addison",
	"003": "Bennington",
	"005": "Caledonia",
	"007": "Chittenden",
	"009": "Essex",
	"011": "Franklin",
	"013": "Grand Isle",
	"015": "Lamoille",
	"017": "Orange",
	"019": "Orleans",
	"021": "Rutland",
	"023": "Washington",
	"025": "Windham",
	"027": "Windsor",
}

// CountyName returns the Vermont county name for a COUNTYFP code.
func CountyName(countyFP string) (string, bool) {
	name, ok := VermontCounties[countyFP]
	return name, ok
}

// VermontCountyFPs returns the sorted COUNTYFP codes of all 14 counties.
func VermontCountyFPs() []string {
	codes := make([]string, 0, len(VermontCounties))
	for fp := range VermontCounties {
		codes = append(codes, fp)
	}
	sort.Strings(codes)
	return codes
}

// StateFIPS maps the state abbreviations the pipeline touches to their
// 2-digit FIPS codes.
var StateFIPS = map[string]string{
	"VT": "50",
	"NY": "36",
}
