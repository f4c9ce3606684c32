// Package units provides constants, validation, and conversion for the
// travel speed units the dashboard can display.
package units

import "strings"

// Travel speed units. Welder logs record travel speed in mm/s.
const (
	MMPS = "mmps" // millimetres per second
	MMPM = "mmpm" // millimetres per minute
	CMPM = "cmpm" // centimetres per minute
	IPM  = "ipm"  // inches per minute
)

// ValidSpeedUnits contains all valid travel speed units.
var ValidSpeedUnits = []string{MMPS, MMPM, CMPM, IPM}

var speedLabels = map[string]string{
	MMPS: "mm/s",
	MMPM: "mm/min",
	CMPM: "cm/min",
	IPM:  "in/min",
}

// IsValidSpeedUnit checks if the given unit is a known travel speed unit.
func IsValidSpeedUnit(unit string) bool {
	_, ok := speedLabels[unit]
	return ok
}

// GetValidSpeedUnitsString returns a comma-separated list of valid units for
// error messages.
func GetValidSpeedUnitsString() string {
	return strings.Join(ValidSpeedUnits, ", ")
}

// SpeedLabel returns the axis label for unit. Unknown units fall back to mm/s.
func SpeedLabel(unit string) string {
	if l, ok := speedLabels[unit]; ok {
		return l
	}
	return speedLabels[MMPS]
}

// ConvertTravelSpeed converts a travel speed from mm/s to the target unit.
// Unknown units return the value unchanged.
func ConvertTravelSpeed(mmps float64, targetUnit string) float64 {
	switch targetUnit {
	case MMPM:
		return mmps * 60
	case CMPM:
		return mmps * 6
	case IPM:
		return mmps * 60 / 25.4
	default:
		return mmps
	}
}
