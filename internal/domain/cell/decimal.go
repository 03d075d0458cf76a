package cell

import (
	"math"
	"strconv"
	"strings"
)

// exactDigits is enough fractional digits to print any float64 exactly.
const exactDigits = 1074

// ToFixed formats x with the given number of fractional digits, rounding
// half away from zero on the exact binary value. 1.005 is stored below
// 1.005, so ToFixed(1.005, 2) is "1.00" while ToFixed(0.25, 1) is "0.3".
func ToFixed(x float64, digits int) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}
	if digits < 0 {
		digits = 0
	}

	neg := x < 0
	exact := strconv.FormatFloat(math.Abs(x), 'f', exactDigits, 64)
	intPart, frac, _ := strings.Cut(exact, ".")

	keep := intPart + frac[:digits]
	if frac[digits] >= '5' {
		keep = incrementDecimal(keep)
	}

	// Re-split: incrementing may have grown the integer part by one digit.
	split := len(keep) - digits
	out := keep[:split]
	if digits > 0 {
		out += "." + keep[split:]
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Round rounds x to digits decimals with the same rule as ToFixed.
func Round(x float64, digits int) float64 {
	f, err := strconv.ParseFloat(ToFixed(x, digits), 64)
	if err != nil {
		return x
	}
	return f
}

// incrementDecimal adds one to an unsigned decimal digit string.
func incrementDecimal(s string) string {
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}
