package analysis

import (
	"github.com/okian/evalsheet/internal/domain/evaluation"
)

// Statistics summarises total scores across projects.
type Statistics struct {
	Count   int     `json:"count"`
	Average Fixed   `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	Range   Fixed   `json:"range"`
}

// ItemAnalysis is the per-item average across projects.
type ItemAnalysis struct {
	Item         string  `json:"item"`
	MaxScore     float64 `json:"maxScore"`
	AverageScore Fixed   `json:"averageScore"`
	AverageRate  Fixed   `json:"averageRate"`
}

// CategoryAnalysis is the achievement rate of one category across projects.
type CategoryAnalysis struct {
	Category               string         `json:"category"`
	AverageAchievementRate Fixed          `json:"averageAchievementRate"`
	Items                  []ItemAnalysis `json:"items"`
}

// CalculateStatistics computes count, average, max, min and range of the
// total scores. All fields are zero when there are no projects.
func CalculateStatistics(projects []evaluation.Project) Statistics {
	if len(projects) == 0 {
		return Statistics{}
	}
	avg, hi, lo := totals(projects)
	return Statistics{
		Count:   len(projects),
		Average: NewFixed(avg, 1),
		Max:     hi,
		Min:     lo,
		Range:   NewFixed(hi-lo, 1),
	}
}

// totals returns the mean, max and min total score of a non-empty slice.
func totals(projects []evaluation.Project) (avg, hi, lo float64) {
	hi, lo = projects[0].TotalScore, projects[0].TotalScore
	var sum float64
	for _, p := range projects {
		sum += p.TotalScore
		if p.TotalScore > hi {
			hi = p.TotalScore
		}
		if p.TotalScore < lo {
			lo = p.TotalScore
		}
	}
	return sum / float64(len(projects)), hi, lo
}

// averageScore is the mean total score, or an unset Fixed (marshalled as 0)
// when there are no projects.
func averageScore(projects []evaluation.Project) Fixed {
	if len(projects) == 0 {
		return Fixed{}
	}
	avg, _, _ := totals(projects)
	return NewFixed(avg, 1)
}

type itemAcc struct {
	name     string
	maxScore float64
	scores   float64
	rates    float64
	n        int
}

type categoryAcc struct {
	name        string
	items       []*itemAcc
	byItem      map[string]*itemAcc
	totalActual float64
	totalMax    float64
}

// AnalyzeCategories groups every evaluation score by category. A category's
// achievement rate is the sum of actual scores over the sum of max scores,
// across every (project, item) pair in it. Categories and items keep the
// order they first appear in. A category whose max scores sum to zero (the
// deduction-only one) reports "0.0%".
func AnalyzeCategories(projects []evaluation.Project) []CategoryAnalysis {
	out := []CategoryAnalysis{}
	if len(projects) == 0 {
		return out
	}

	var order []*categoryAcc
	byName := make(map[string]*categoryAcc)
	for _, p := range projects {
		for _, ev := range p.Evaluations {
			cat, ok := byName[ev.Category]
			if !ok {
				cat = &categoryAcc{name: ev.Category, byItem: make(map[string]*itemAcc)}
				byName[ev.Category] = cat
				order = append(order, cat)
			}
			it, ok := cat.byItem[ev.Item]
			if !ok {
				it = &itemAcc{name: ev.Item, maxScore: ev.MaxScore}
				cat.byItem[ev.Item] = it
				cat.items = append(cat.items, it)
			}
			it.scores += ev.Score
			it.rates += ev.Rate
			it.n++
			cat.totalActual += ev.Score
			cat.totalMax += ev.MaxScore
		}
	}

	for _, cat := range order {
		rate := 0.0
		if cat.totalMax != 0 {
			rate = cat.totalActual / cat.totalMax * 100
		}
		ca := CategoryAnalysis{
			Category:               cat.name,
			AverageAchievementRate: Percent(rate, 1),
			Items:                  make([]ItemAnalysis, 0, len(cat.items)),
		}
		for _, it := range cat.items {
			ca.Items = append(ca.Items, ItemAnalysis{
				Item:         it.name,
				MaxScore:     it.maxScore,
				AverageScore: NewFixed(it.scores/float64(it.n), 2),
				AverageRate:  Percent(it.rates/float64(it.n), 1),
			})
		}
		out = append(out, ca)
	}
	return out
}
