package evaluation

import (
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tokyo must resolve on hosts without zoneinfo.

	"github.com/okian/evalsheet/internal/domain/cell"
)

// DefaultTimeZone is the zone dates are formatted in.
const DefaultTimeZone = "Asia/Tokyo"

// Score is one evaluation item result of a project.
type Score struct {
	Category string  `json:"category"`
	Item     string  `json:"item"`
	MaxScore float64 `json:"maxScore"`
	Score    float64 `json:"score"`
	// Rate is the achievement rate on a 0-100 scale.
	Rate float64 `json:"rate"`
}

// Project is one evaluated construction project read from a column pair.
type Project struct {
	// Date is yyyy-MM-dd, the raw header text, or "" when absent.
	Date        string  `json:"date"`
	Name        string  `json:"name"`
	TotalScore  float64 `json:"totalScore"`
	Evaluations []Score `json:"evaluations"`
}

// Result is the outcome of one extraction pass.
type Result struct {
	Projects []Project
	// Skipped lists the score column of every pair treated as blank.
	Skipped []int
}

// Extractor reads project records out of a grid. It holds no state between
// calls; the same grid always yields the same records.
type Extractor struct {
	layout        Layout
	items         []ItemDefinition
	loc           *time.Location
	skipZeroTotal bool
}

// NewExtractor creates an extractor with the default layout and items.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		layout:        DefaultLayout(),
		items:         Items(),
		loc:           defaultLocation(),
		skipZeroTotal: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Items returns the item definitions this extractor reads.
func (e *Extractor) Items() []ItemDefinition {
	return append([]ItemDefinition(nil), e.items...)
}

// Extract walks the column pairs left to right and returns one Project per
// populated pair. Unreadable cells degrade to zero or "" and never fail.
func (e *Extractor) Extract(g cell.Grid) Result {
	res := Result{Projects: []Project{}}
	l := e.layout

	for col := l.FirstColumn; col < g.Width(); col += l.ColumnStride {
		name := strings.TrimSpace(cell.TextOr(g.At(l.NameRow, col), e.loc, ""))
		total := cell.NumberOr(g.At(l.TotalRow, col), 0)

		if name == "" || (e.skipZeroTotal && total == 0) {
			res.Skipped = append(res.Skipped, col)
			continue
		}

		p := Project{
			Date:        e.date(g.At(l.DateRow, col)),
			Name:        name,
			TotalScore:  total,
			Evaluations: make([]Score, 0, len(e.items)),
		}
		for _, it := range e.items {
			p.Evaluations = append(p.Evaluations, Score{
				Category: it.Category,
				Item:     it.Item,
				MaxScore: it.MaxScore,
				Score:    cell.NumberOr(g.At(it.RowIndex, col), 0),
				Rate:     cell.RateOr(g.At(it.RowIndex, col+1), 0),
			})
		}
		res.Projects = append(res.Projects, p)
	}
	return res
}

// date renders the header date cell. A numeric zero counts as absent.
func (e *Extractor) date(v cell.Value) string {
	if n, ok := v.AsNumber(); ok && n == 0 {
		return ""
	}
	return cell.TextOr(v, e.loc, "")
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}
