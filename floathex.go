package xtid

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// maxFracDigits caps the fractional expansion. Coefficients rounded to two
// decimals terminate well before the cap.
const maxFracDigits = 32

// floatToHex writes a non-negative float in hexadecimal. Fractional digits
// are extracted by repeated multiplication by 16 until the remainder
// terminates or the precision cap is hit. Zero encodes as the empty string;
// callers substitute the literal digit.
func floatToHex(x float64) string {
	var sb strings.Builder

	quotient := int(x)
	fraction := x - float64(quotient)

	var ipart []byte
	for quotient > 0 {
		ipart = append([]byte{hexDigits[quotient%16]}, ipart...)
		quotient /= 16
	}
	sb.Write(ipart)

	if fraction == 0 {
		return sb.String()
	}
	sb.WriteByte('.')
	for i := 0; fraction > 0 && i < maxFracDigits; i++ {
		fraction *= 16
		digit := int(fraction)
		fraction -= float64(digit)
		sb.WriteByte(hexDigits[digit])
	}
	return sb.String()
}

// hexToFloat is the inverse of floatToHex, within the emitted precision.
func hexToFloat(s string) (float64, error) {
	intPart, fracPart, _ := strings.Cut(strings.ToUpper(s), ".")

	var out float64
	for _, r := range intPart {
		d := strings.IndexRune(hexDigits, r)
		if d < 0 {
			return 0, fmt.Errorf("invalid hex digit %q in %q", r, s)
		}
		out = out*16 + float64(d)
	}

	scale := 1.0
	for _, r := range fracPart {
		d := strings.IndexRune(hexDigits, r)
		if d < 0 {
			return 0, fmt.Errorf("invalid hex digit %q in %q", r, s)
		}
		scale /= 16
		out += float64(d) * scale
	}
	return out, nil
}
