package xtid

import "math"

// solve remaps a byte-range value (0-255) into [minVal, maxVal]. The result
// is floored to an integer when useFloor is set, otherwise rounded to two
// decimal places.
func solve(value, minVal, maxVal float64, useFloor bool) float64 {
	result := value*(maxVal-minVal)/255 + minVal
	if useFloor {
		return math.Floor(result)
	}
	return math.Round(result*100) / 100
}

// interpolate lerps element-wise between two equal-length vectors; t is
// expected in [0,1] but is not clamped.
func interpolate(from, to []float64, t float64) []float64 {
	out := make([]float64, len(from))
	for i := range from {
		out[i] = from[i]*(1-t) + to[i]*t
	}
	return out
}
