package xtid

import "math"

// convertRotationToMatrix expands a rotation angle in degrees into the four
// affine coefficients of a 2D rotation, no translation: at 0 degrees the
// result is the identity [1,0,0,1].
func convertRotationToMatrix(degrees float64) []float64 {
	rad := degrees * math.Pi / 180
	return []float64{math.Cos(rad), math.Sin(rad), -math.Sin(rad), math.Cos(rad)}
}
