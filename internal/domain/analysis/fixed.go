package analysis

import (
	"strconv"

	"github.com/okian/evalsheet/internal/domain/cell"
)

// Fixed is a decimal rendered as a string with a fixed number of digits,
// e.g. "72.5". A Fixed without a value marshals as the number 0, which is how
// averages over zero projects are reported.
type Fixed struct {
	value  float64
	digits int
	suffix string
	valid  bool
}

// NewFixed returns a Fixed holding v with the given decimals.
func NewFixed(v float64, digits int) Fixed {
	return Fixed{value: v, digits: digits, valid: true}
}

// Percent returns a Fixed rendered with a trailing "%".
func Percent(v float64, digits int) Fixed {
	return Fixed{value: v, digits: digits, suffix: "%", valid: true}
}

// Value returns the underlying number.
func (f Fixed) Value() float64 { return f.value }

// Valid reports whether f holds a value.
func (f Fixed) Valid() bool { return f.valid }

// String renders the fixed-point text, or "0" when f holds no value.
func (f Fixed) String() string {
	if !f.valid {
		return "0"
	}
	return cell.ToFixed(f.value, f.digits) + f.suffix
}

// MarshalJSON implements json.Marshaler.
func (f Fixed) MarshalJSON() ([]byte, error) {
	if !f.valid {
		return []byte("0"), nil
	}
	return []byte(strconv.Quote(f.String())), nil
}
