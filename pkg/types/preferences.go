package types

import "fmt"

// CurrentPreferencesVersion is the current version of the preferences struct.
// Increment this value when adding new fields that require default values.
const CurrentPreferencesVersion = 3

// Theme is the dashboard color theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether the theme is one of the supported values.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// UnitSystem selects between metric and imperial display units.
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// Valid reports whether the unit system is one of the supported values.
func (u UnitSystem) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// Toggled returns the opposite unit system.
func (u UnitSystem) Toggled() UnitSystem {
	if u == UnitsImperial {
		return UnitsMetric
	}
	return UnitsImperial
}

// Preferences represents a user's persisted dashboard preferences.
// These are dynamic and can be changed without redeploying.
type Preferences struct {
	Theme        Theme      `json:"theme"`
	UnitSystem   UnitSystem `json:"unitSystem"`
	SelectedZone string     `json:"selectedZone"`
}

// MigratePreferences migrates stored preferences to the current version.
// It returns the migrated preferences, a boolean indicating if changes were
// made, and an error if migration failed.
func MigratePreferences(p Preferences, currentVersion int) (Preferences, bool, error) {
	if currentVersion >= CurrentPreferencesVersion {
		return p, false, nil
	}

	migrated := false
	// Loop through versions to apply migrations sequentially
	for version := currentVersion + 1; version <= CurrentPreferencesVersion; version++ {
		switch version {
		case 1:
			// version 1: initial, theme defaults to light
			if p.Theme == "" {
				p.Theme = ThemeLight
				migrated = true
			}
		case 2:
			// version 2: add unit system
			// new users get the timezone heuristic at creation, existing
			// records default to metric
			if p.UnitSystem == "" {
				p.UnitSystem = UnitsMetric
				migrated = true
			}
		case 3:
			// version 3: add selected zone
			if p.SelectedZone == "" {
				p.SelectedZone = "STATEWIDE"
				migrated = true
			}
		default:
			return p, false, fmt.Errorf("unknown preferences version: %d", version)
		}
	}

	return p, migrated, nil
}
