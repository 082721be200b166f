// Package units converts and formats weather values between metric and
// imperial display units. Conversions are pure; upstream data is always
// metric (°C and m/s).
package units

import (
	"fmt"
	"strings"

	"github.com/gridscope/gridscope/pkg/types"
)

const msToMPH = 2.237

// DefaultSystem infers a unit system from an IANA timezone name. US-hosted
// dashboards overwhelmingly run in an America/* zone, so those default to
// imperial. This is a heuristic, not a geolocation lookup.
func DefaultSystem(timezone string) types.UnitSystem {
	if strings.Contains(timezone, "America") {
		return types.UnitsImperial
	}
	return types.UnitsMetric
}

// ConvertTemperature converts a Celsius temperature into the target system.
func ConvertTemperature(celsius float64, system types.UnitSystem) float64 {
	if system == types.UnitsImperial {
		return celsius*9/5 + 32
	}
	return celsius
}

// ConvertWindSpeed converts a wind speed in m/s into the target system.
func ConvertWindSpeed(metersPerSecond float64, system types.UnitSystem) float64 {
	if system == types.UnitsImperial {
		return metersPerSecond * msToMPH
	}
	return metersPerSecond
}

// FormatTemperature renders a Celsius temperature with one decimal place and
// the unit suffix for the target system.
func FormatTemperature(celsius float64, system types.UnitSystem) string {
	if system == types.UnitsImperial {
		return fmt.Sprintf("%.1f°F", ConvertTemperature(celsius, system))
	}
	return fmt.Sprintf("%.1f°C", celsius)
}

// FormatWindSpeed renders a wind speed in m/s with one decimal place and the
// unit suffix for the target system.
func FormatWindSpeed(metersPerSecond float64, system types.UnitSystem) string {
	if system == types.UnitsImperial {
		return fmt.Sprintf("%.1f mph", ConvertWindSpeed(metersPerSecond, system))
	}
	return fmt.Sprintf("%.1f m/s", metersPerSecond)
}
