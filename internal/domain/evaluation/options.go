package evaluation

import "time"

// Layout locates the header, total and first project column on the sheet.
// Indices are zero-based.
type Layout struct {
	FirstColumn  int
	ColumnStride int
	DateRow      int
	NameRow      int
	TotalRow     int
}

// DefaultLayout matches the breakdown sheet: projects from column E, dates on
// row 5, names on row 6 and totals on row 22.
func DefaultLayout() Layout {
	return Layout{
		FirstColumn:  4,
		ColumnStride: 2,
		DateRow:      4,
		NameRow:      5,
		TotalRow:     21,
	}
}

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithLocation sets the zone used to format date cells.
func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithSkipZeroTotal controls whether a column pair whose total is exactly 0
// is treated as blank. A genuine zero-score project is dropped when enabled.
func WithSkipZeroTotal(skip bool) Option {
	return func(e *Extractor) {
		e.skipZeroTotal = skip
	}
}

// WithLayout overrides the sheet layout.
func WithLayout(l Layout) Option {
	return func(e *Extractor) {
		if l.ColumnStride >= 2 && l.FirstColumn >= 0 {
			e.layout = l
		}
	}
}

// WithItems overrides the item definitions. Intended for alternative sheets
// sharing the same layout.
func WithItems(defs []ItemDefinition) Option {
	return func(e *Extractor) {
		if len(defs) > 0 {
			e.items = append([]ItemDefinition(nil), defs...)
		}
	}
}
