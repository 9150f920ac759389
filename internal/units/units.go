// Package units provides shared constants and conversions for angle units
// and the decimal rounding applied to readings.
package units

import (
	"math"
	"strconv"
)

// Unit constants
const (
	Radians = "rad"
	Degrees = "deg"
)

// RadiansToDegrees converts an angle in radians to degrees.
func RadiansToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// ConvertAngle converts an angle from radians to the target units.
// Elevation angles are carried in radians throughout.
func ConvertAngle(rad float64, targetUnits string) float64 {
	switch targetUnits {
	case Degrees:
		return RadiansToDegrees(rad)
	default:
		return rad
	}
}

// RoundDecimal rounds v to precision decimal places, deciding on the exact
// binary value of v with ties to even. 0.015 is stored just below 0.015 and
// so rounds to 0.01. Negative zero is folded to zero so it never reaches
// the output as "-0.0".
func RoundDecimal(v float64, precision int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', precision, 64), 64)
	if err != nil {
		return v
	}
	if r == 0 {
		return 0
	}
	return r
}
