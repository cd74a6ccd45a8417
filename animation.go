package xtid

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// totalTime is the animation duration the frame time normalizes against.
const totalTime = 4096.0

// minFrameRow is 3 from-color + 3 to-color + 1 rotation + at least 1 curve
// value.
const minFrameRow = 8

var strainerRegex = regexp.MustCompile(`[.-]`)

// deriveAnimationKey computes the session's animation key from the key
// bytes, the resolved script indices and the page's frame table. It is a
// pure function of its inputs: the same page context always reproduces the
// same key.
func deriveAnimationKey(keyBytes []byte, indices indexSet, doc Document) (string, error) {
	if err := indices.validate(keyBytes); err != nil {
		return "", err
	}

	table, err := selectFrame(doc, keyBytes)
	if err != nil {
		return "", err
	}
	row := int(keyBytes[indices.rowIndex]) % 16
	if row >= len(table) {
		return "", fmt.Errorf("%w: row %d outside frame table of %d rows", ErrInvalidFrameData, row, len(table))
	}

	// The frame time folds the low nibbles of the indexed key bytes
	// left-to-right, then snaps to a multiple of ten.
	frameTime := 1.0
	for _, idx := range indices.keyByteIndices {
		frameTime *= float64(int(keyBytes[idx]) % 16)
	}
	frameTime = jsRound(frameTime/10) * 10

	return animate(table[row], frameTime/totalTime)
}

// animate encodes one frame row at the normalized target time: interpolated
// color channels and rotation-matrix coefficients concatenate into the
// animation key, with fractional markers and signs stripped.
func animate(row []int, targetTime float64) (string, error) {
	if len(row) < minFrameRow {
		return "", fmt.Errorf("%w: frame row has %d values, need at least %d", ErrInvalidFrameData, len(row), minFrameRow)
	}

	fromColor := []float64{float64(row[0]), float64(row[1]), float64(row[2]), 1}
	toColor := []float64{float64(row[3]), float64(row[4]), float64(row[5]), 1}
	fromRotation := []float64{0}
	toRotation := []float64{solve(float64(row[6]), 60.0, 360.0, true)}

	curveValues := row[7:]
	curves := make([]float64, len(curveValues))
	for i, v := range curveValues {
		curves[i] = solve(float64(v), isOdd(i), 1.0, false)
	}

	val := newCubic(curves).getValue(targetTime)

	color := interpolate(fromColor, toColor, val)
	for i := range color {
		color[i] = math.Max(0, math.Min(255, color[i]))
	}
	rotation := interpolate(fromRotation, toRotation, val)
	matrix := convertRotationToMatrix(rotation[0])

	pieces := make([]string, 0, 9)
	for i := 0; i < 3; i++ {
		pieces = append(pieces, fmt.Sprintf("%x", int(math.Round(color[i]))))
	}
	for _, coeff := range matrix {
		rounded := math.Abs(math.Round(coeff*100) / 100)
		hexValue := floatToHex(rounded)
		switch {
		case strings.HasPrefix(hexValue, "."):
			pieces = append(pieces, "0"+strings.ToLower(hexValue))
		case hexValue == "":
			pieces = append(pieces, "0")
		default:
			pieces = append(pieces, hexValue)
		}
	}
	// Translate placeholders.
	pieces = append(pieces, "0", "0")

	return strainerRegex.ReplaceAllString(strings.Join(pieces, ""), ""), nil
}
