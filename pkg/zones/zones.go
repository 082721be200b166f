// Package zones defines the static CAISO zone table used across GridScope.
//
// The table covers the major pricing zones (NP15/SP15/ZP26), the large
// utility territories, and a STATEWIDE aggregate. Load weights are relative
// to STATEWIDE and the non-aggregate weights sum to 1.0.
package zones

import "sort"

// Statewide is the key of the aggregate pseudo-zone and the fallback
// selection when a stored zone key is unrecognized.
const Statewide = "STATEWIDE"

// Zone describes a single CAISO zone or utility territory.
type Zone struct {
	Name          string  `json:"name"`
	FullName      string  `json:"full_name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	MajorCity     string  `json:"major_city"`
	Description   string  `json:"description"`
	LoadWeight    float64 `json:"load_weight"`
	ClimateRegion string  `json:"climate_region"`
}

// caisoZones maps zone keys to their static definitions. Never mutated at runtime.
var caisoZones = map[string]Zone{
	Statewide: {
		Name:          Statewide,
		FullName:      "California Statewide",
		Latitude:      36.7783,
		Longitude:     -119.4179,
		MajorCity:     "Sacramento",
		Description:   "Aggregate demand across the entire CAISO footprint",
		LoadWeight:    1.0,
		ClimateRegion: "statewide",
	},
	"NP15": {
		Name:          "NP15",
		FullName:      "North of Path 15",
		Latitude:      38.5816,
		Longitude:     -121.4944,
		MajorCity:     "Sacramento",
		Description:   "Northern California pricing zone north of the Path 15 transmission corridor",
		LoadWeight:    0.18,
		ClimateRegion: "northern",
	},
	"SP15": {
		Name:          "SP15",
		FullName:      "South of Path 15",
		Latitude:      34.0522,
		Longitude:     -118.2437,
		MajorCity:     "Los Angeles",
		Description:   "Southern California pricing zone south of the Path 15 transmission corridor",
		LoadWeight:    0.22,
		ClimateRegion: "southern",
	},
	"ZP26": {
		Name:          "ZP26",
		FullName:      "Zone Path 26",
		Latitude:      35.3733,
		Longitude:     -119.0187,
		MajorCity:     "Bakersfield",
		Description:   "Central pricing zone between Path 15 and Path 26",
		LoadWeight:    0.06,
		ClimateRegion: "central_valley",
	},
	"PGE_BAY": {
		Name:          "PGE_BAY",
		FullName:      "PG&E Bay Area",
		Latitude:      37.7749,
		Longitude:     -122.4194,
		MajorCity:     "San Francisco",
		Description:   "Pacific Gas & Electric service territory around the San Francisco Bay",
		LoadWeight:    0.12,
		ClimateRegion: "coastal",
	},
	"PGE_VALLEY": {
		Name:          "PGE_VALLEY",
		FullName:      "PG&E Central Valley",
		Latitude:      36.7378,
		Longitude:     -119.7871,
		MajorCity:     "Fresno",
		Description:   "Pacific Gas & Electric inland service territory in the Central Valley",
		LoadWeight:    0.10,
		ClimateRegion: "central_valley",
	},
	"SCE": {
		Name:          "SCE",
		FullName:      "Southern California Edison",
		Latitude:      34.1083,
		Longitude:     -117.2898,
		MajorCity:     "San Bernardino",
		Description:   "Southern California Edison service territory in the LA basin and Inland Empire",
		LoadWeight:    0.15,
		ClimateRegion: "southern",
	},
	"SDGE": {
		Name:          "SDGE",
		FullName:      "San Diego Gas & Electric",
		Latitude:      32.7157,
		Longitude:     -117.1611,
		MajorCity:     "San Diego",
		Description:   "San Diego Gas & Electric service territory in the far south coastal region",
		LoadWeight:    0.09,
		ClimateRegion: "coastal",
	},
	"SMUD": {
		Name:          "SMUD",
		FullName:      "Sacramento Municipal Utility District",
		Latitude:      38.5816,
		Longitude:     -121.4944,
		MajorCity:     "Sacramento",
		Description:   "Municipal utility serving Sacramento County",
		LoadWeight:    0.04,
		ClimateRegion: "northern",
	},
	"LADWP": {
		Name:          "LADWP",
		FullName:      "Los Angeles Department of Water and Power",
		Latitude:      34.0522,
		Longitude:     -118.2437,
		MajorCity:     "Los Angeles",
		Description:   "Municipal utility serving the city of Los Angeles",
		LoadWeight:    0.03,
		ClimateRegion: "southern",
	},
	"VEA": {
		Name:          "VEA",
		FullName:      "Valley Electric Association",
		Latitude:      36.2083,
		Longitude:     -115.9839,
		MajorCity:     "Pahrump",
		Description:   "Rural cooperative on the California-Nevada border participating in CAISO",
		LoadWeight:    0.01,
		ClimateRegion: "desert",
	},
}

// climateRegionOrder fixes the display order of categories.
var climateRegionOrder = []string{
	"statewide",
	"northern",
	"central_valley",
	"coastal",
	"southern",
	"desert",
}

// Get returns the zone for the given key.
func Get(key string) (Zone, bool) {
	z, ok := caisoZones[key]
	return z, ok
}

// Valid reports whether the key names a known zone.
func Valid(key string) bool {
	_, ok := caisoZones[key]
	return ok
}

// IsStatewide reports whether the key is the aggregate pseudo-zone.
func IsStatewide(key string) bool {
	return key == Statewide
}

// Normalize returns the key unchanged if it names a known zone, otherwise
// the STATEWIDE fallback. Stored selections that no longer resolve go
// through this on read so downstream lookups never see an unknown key.
func Normalize(key string) string {
	if Valid(key) {
		return key
	}
	return Statewide
}

// Keys returns all zone keys with STATEWIDE first and the rest sorted.
func Keys() []string {
	keys := make([]string, 0, len(caisoZones))
	for k := range caisoZones {
		if k == Statewide {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return append([]string{Statewide}, keys...)
}

// All returns every zone in Keys() order.
func All() []Zone {
	keys := Keys()
	out := make([]Zone, 0, len(keys))
	for _, k := range keys {
		out = append(out, caisoZones[k])
	}
	return out
}

// Category groups zones sharing a climate region.
type Category struct {
	ClimateRegion string `json:"climate_region"`
	Zones         []Zone `json:"zones"`
}

// Categories returns the zones grouped by climate region in display order.
func Categories() []Category {
	byRegion := make(map[string][]Zone)
	for _, k := range Keys() {
		z := caisoZones[k]
		byRegion[z.ClimateRegion] = append(byRegion[z.ClimateRegion], z)
	}

	out := make([]Category, 0, len(climateRegionOrder))
	for _, region := range climateRegionOrder {
		if zs, ok := byRegion[region]; ok {
			out = append(out, Category{ClimateRegion: region, Zones: zs})
		}
	}
	return out
}
