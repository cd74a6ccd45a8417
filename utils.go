package xtid

import "math"

const (
	// defaultKeyword is folded into every hash input.
	defaultKeyword = "obfiowerehiring"

	// payloadTagByte terminates the payload before masking.
	payloadTagByte = 3

	// epochOffsetMillis rebases request times onto the client epoch.
	epochOffsetMillis = 1_682_924_400_000
)

// jsRound rounds like JavaScript's Math.round: halves go toward positive
// infinity in magnitude terms.
func jsRound(num float64) float64 {
	x := math.Floor(num)
	if num-x >= 0.5 {
		x = math.Ceil(num)
	}
	return math.Copysign(x, num)
}

// isOdd gives the lower interpolation bound for a curve value: even
// positions start at 0, odd at -1.
func isOdd(num int) float64 {
	if num%2 != 0 {
		return -1.0
	}
	return 0.0
}
