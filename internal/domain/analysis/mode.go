// Package analysis aggregates project records into report payloads.
package analysis

// Mode selects the shape of a report.
type Mode string

// Report modes.
const (
	ModeAll     Mode = "all"
	ModeSummary Mode = "summary"
	ModeDetail  Mode = "detail"
)

// ParseMode maps a query value to a Mode. Only exact names match; empty,
// unknown and padded values fall back to ModeAll without an error.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeSummary:
		return ModeSummary
	case ModeDetail:
		return ModeDetail
	default:
		return ModeAll
	}
}
