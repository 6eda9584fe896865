package utils

import "math"

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}

// CloseEnough compares two floats with a relative tolerance of 42 ulps.
func CloseEnough(x, y float64) bool {
	if x == y {
		return true
	}
	diff := math.Abs(x - y)
	tol := 42 * 2.220446049250313e-16
	if x == 0 || y == 0 {
		return diff < tol*tol
	}
	return diff <= tol*math.Abs(x) || diff <= tol*math.Abs(y)
}
