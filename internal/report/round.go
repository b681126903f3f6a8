package report

import "math"

// round rounds half to even at the given number of decimal places
func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
