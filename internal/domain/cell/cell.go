// Package cell models spreadsheet cell values as a small tagged union and
// provides parse-with-default conversions over them.
package cell

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Cell kinds.
const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindDate
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Value is one raw cell: Number, Text, Date or Empty. The zero Value is Empty.
type Value struct {
	kind Kind
	num  float64
	text string
	date time.Time
}

// Grid is a rectangular block of cells indexed [row][column].
type Grid [][]Value

// Empty returns an empty cell.
func Empty() Value { return Value{} }

// Number returns a numeric cell.
func Number(v float64) Value { return Value{kind: KindNumber, num: v} }

// Text returns a string cell. Text cells are kept verbatim, including "".
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Date returns a date-typed cell.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t} }

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the cell holds nothing.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// AsNumber returns the number and true when the cell is numeric.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsText returns the string and true when the cell is text.
func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsDate returns the time and true when the cell is date-typed.
func (v Value) AsDate() (time.Time, bool) { return v.date, v.kind == KindDate }

// At returns the cell at (row, col), or Empty when out of range.
func (g Grid) At(row, col int) Value {
	if row < 0 || row >= len(g) {
		return Empty()
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return Empty()
	}
	return r[col]
}

// HasRow reports whether row exists in the grid.
func (g Grid) HasRow(row int) bool { return row >= 0 && row < len(g) }

// Width is the length of the first row, or 0 for an empty grid.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Rectangular pads every row with Empty cells to the width of the widest row.
func Rectangular(rows [][]Value) Grid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	g := make(Grid, len(rows))
	for i, r := range rows {
		if len(r) == width {
			g[i] = r
			continue
		}
		padded := make([]Value, width)
		copy(padded, r)
		g[i] = padded
	}
	return g
}

// leadingNumber matches the longest decimal literal prefix, the way a lenient
// float parser reads "12.5pt" as 12.5.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseLeadingFloat parses the numeric prefix of s after leading whitespace.
func ParseLeadingFloat(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	// Underflow rounds to zero and is kept; overflow is not a usable number.
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberOr returns the numeric reading of the cell, or def when it has none.
// Text is parsed by its numeric prefix; dates and empty cells yield def.
func NumberOr(v Value, def float64) float64 {
	switch v.kind {
	case KindNumber:
		if !math.IsNaN(v.num) && !math.IsInf(v.num, 0) {
			return v.num
		}
	case KindText:
		if f, ok := ParseLeadingFloat(v.text); ok {
			return f
		}
	}
	return def
}

// RateOr converts an achievement rate cell to a 0-100 percentage.
// Numbers are fractions and get scaled by 100 then rounded to one decimal;
// text has a trailing "%" stripped and is parsed. Anything else yields def.
func RateOr(v Value, def float64) float64 {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return def
		}
		return Round(v.num*100, 1)
	case KindText:
		s := strings.TrimSuffix(strings.TrimSpace(v.text), "%")
		if f, ok := ParseLeadingFloat(s); ok {
			return f
		}
	}
	return def
}

// TextOr renders the cell as a string. Numbers use the shortest decimal form,
// dates are formatted as yyyy-MM-dd in loc, empty cells yield def.
func TextOr(v Value, loc *time.Location, def string) string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return FormatDate(v.date, loc)
	}
	return def
}

// DateLayout is the yyyy-MM-dd layout used for project dates.
const DateLayout = "2006-01-02"

// FormatDate formats t as yyyy-MM-dd in loc (UTC when loc is nil).
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
