package analysis_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/evalsheet/internal/domain/analysis"
	"github.com/okian/evalsheet/internal/domain/evaluation"
	. "github.com/smartystreets/goconvey/convey"
)

func project(name string, total float64, evs ...evaluation.Score) evaluation.Project {
	return evaluation.Project{Date: "2024-04-01", Name: name, TotalScore: total, Evaluations: evs}
}

// zeroScores returns one zero score per static item definition.
func zeroScores() []evaluation.Score {
	defs := evaluation.Items()
	out := make([]evaluation.Score, len(defs))
	for i, d := range defs {
		out[i] = evaluation.Score{Category: d.Category, Item: d.Item, MaxScore: d.MaxScore}
	}
	return out
}

func toMap(v any) map[string]any {
	b, err := json.Marshal(v)
	So(err, ShouldBeNil)
	var m map[string]any
	So(json.Unmarshal(b, &m), ShouldBeNil)
	return m
}

func TestParseMode(t *testing.T) {
	Convey("Given mode strings", t, func() {
		So(analysis.ParseMode("summary"), ShouldEqual, analysis.ModeSummary)
		So(analysis.ParseMode("detail"), ShouldEqual, analysis.ModeDetail)
		So(analysis.ParseMode("all"), ShouldEqual, analysis.ModeAll)
		So(analysis.ParseMode(""), ShouldEqual, analysis.ModeAll)
		So(analysis.ParseMode("SUMMARY"), ShouldEqual, analysis.ModeAll)
		So(analysis.ParseMode("bogus"), ShouldEqual, analysis.ModeAll)
		So(analysis.ParseMode(" summary"), ShouldEqual, analysis.ModeAll)
		So(analysis.ParseMode("detail\n"), ShouldEqual, analysis.ModeAll)
	})
}

func TestFixed(t *testing.T) {
	Convey("Given fixed-point values", t, func() {
		Convey("Then set values marshal as strings", func() {
			b, err := json.Marshal(analysis.NewFixed(72.5, 1))
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `"72.5"`)

			b, err = json.Marshal(analysis.Percent(50, 1))
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `"50.0%"`)
		})

		Convey("Then unset values marshal as the number zero", func() {
			var f analysis.Fixed
			b, err := json.Marshal(f)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `0`)
			So(f.Valid(), ShouldBeFalse)
			So(f.String(), ShouldEqual, "0")
		})
	})
}

func TestCalculateStatistics(t *testing.T) {
	Convey("Given project totals", t, func() {
		ps := []evaluation.Project{project("a", 70), project("b", 81.3), project("c", 66)}
		s := analysis.CalculateStatistics(ps)

		So(s.Count, ShouldEqual, 3)
		So(s.Average.String(), ShouldEqual, "72.4")
		So(s.Max, ShouldEqual, 81.3)
		So(s.Min, ShouldEqual, 66.0)
		So(s.Range.String(), ShouldEqual, "15.3")
	})

	Convey("Given no projects", t, func() {
		m := toMap(analysis.CalculateStatistics(nil))

		Convey("Then every statistic is zero", func() {
			So(m["count"], ShouldEqual, 0.0)
			So(m["average"], ShouldEqual, 0.0)
			So(m["max"], ShouldEqual, 0.0)
			So(m["min"], ShouldEqual, 0.0)
			So(m["range"], ShouldEqual, 0.0)
		})
	})
}

func TestAnalyzeCategories(t *testing.T) {
	Convey("Given two projects scoring 2 of 4 on the same item", t, func() {
		ev := evaluation.Score{Category: "A", Item: "a1", MaxScore: 4, Score: 2, Rate: 50}
		ps := []evaluation.Project{project("p", 10, ev), project("q", 20, ev)}

		cats := analysis.AnalyzeCategories(ps)

		Convey("Then the category achievement rate is 50.0%", func() {
			So(len(cats), ShouldEqual, 1)
			So(cats[0].Category, ShouldEqual, "A")
			So(cats[0].AverageAchievementRate.String(), ShouldEqual, "50.0%")
		})

		Convey("Then the item averages are formatted", func() {
			So(len(cats[0].Items), ShouldEqual, 1)
			it := cats[0].Items[0]
			So(it.Item, ShouldEqual, "a1")
			So(it.MaxScore, ShouldEqual, 4.0)
			So(it.AverageScore.String(), ShouldEqual, "2.00")
			So(it.AverageRate.String(), ShouldEqual, "50.0%")
		})
	})

	Convey("Given items of one category across projects", t, func() {
		ps := []evaluation.Project{
			project("p", 10,
				evaluation.Score{Category: "B", Item: "b1", MaxScore: 3, Score: 3, Rate: 100},
				evaluation.Score{Category: "A", Item: "a1", MaxScore: 1, Score: 1, Rate: 100},
				evaluation.Score{Category: "B", Item: "b2", MaxScore: 5, Score: 1, Rate: 20},
			),
			project("q", 10,
				evaluation.Score{Category: "B", Item: "b1", MaxScore: 3, Score: 1, Rate: 33.3},
				evaluation.Score{Category: "A", Item: "a1", MaxScore: 1, Score: 0, Rate: 0},
				evaluation.Score{Category: "B", Item: "b2", MaxScore: 5, Score: 2, Rate: 40},
			),
		}
		cats := analysis.AnalyzeCategories(ps)

		Convey("Then categories and items keep first-seen order", func() {
			So(len(cats), ShouldEqual, 2)
			So(cats[0].Category, ShouldEqual, "B")
			So(cats[1].Category, ShouldEqual, "A")
			So(cats[0].Items[0].Item, ShouldEqual, "b1")
			So(cats[0].Items[1].Item, ShouldEqual, "b2")
		})

		Convey("Then sums run over every project and item", func() {
			// (3+1+1+2) / (3+5+3+5) = 7/16
			So(cats[0].AverageAchievementRate.String(), ShouldEqual, "43.8%")
			So(cats[0].Items[0].AverageScore.String(), ShouldEqual, "2.00")
			So(cats[0].Items[0].AverageRate.String(), ShouldEqual, "66.7%")
			So(cats[1].AverageAchievementRate.String(), ShouldEqual, "50.0%")
		})
	})

	Convey("Given the deduction-only category", t, func() {
		ps := []evaluation.Project{project("p", 60, zeroScores()...)}
		cats := analysis.AnalyzeCategories(ps)

		Convey("Then all seven categories are reported without NaN", func() {
			So(len(cats), ShouldEqual, 7)
			So(cats[6].AverageAchievementRate.String(), ShouldEqual, "0.0%")
		})
	})

	Convey("Given no projects", t, func() {
		cats := analysis.AnalyzeCategories(nil)
		So(cats, ShouldNotBeNil)
		So(len(cats), ShouldEqual, 0)
	})
}

func TestBuild(t *testing.T) {
	Convey("Given one project named Bridge A with a 72.5 total", t, func() {
		ps := []evaluation.Project{project("Bridge A", 72.5, zeroScores()...)}

		Convey("When building the full report", func() {
			r := analysis.Build(analysis.ModeAll, ps)
			m := toMap(r)

			Convey("Then the summary reflects the single project", func() {
				So(r.Count(), ShouldEqual, 1)
				So(m["projectCount"], ShouldEqual, 1.0)
				summary := m["summary"].(map[string]any)
				So(summary["averageScore"], ShouldEqual, "72.5")
				So(summary["maxScore"], ShouldEqual, 72.5)
				So(summary["minScore"], ShouldEqual, 72.5)
				So(len(m["categoryAnalysis"].([]any)), ShouldEqual, 7)
				So(len(m["projects"].([]any)), ShouldEqual, 1)
			})
		})

		Convey("When building the summary report", func() {
			m := toMap(analysis.Build(analysis.ModeSummary, ps))

			Convey("Then projects are reduced to headlines", func() {
				p := m["projects"].([]any)[0].(map[string]any)
				So(p, ShouldContainKey, "name")
				So(p, ShouldContainKey, "date")
				So(p, ShouldContainKey, "totalScore")
				So(p, ShouldNotContainKey, "evaluations")
				So(m["averageScore"], ShouldEqual, "72.5")
				stats := m["statistics"].(map[string]any)
				So(stats["count"], ShouldEqual, 1.0)
				So(stats["range"], ShouldEqual, "0.0")
				So(m, ShouldNotContainKey, "categoryAnalysis")
			})
		})

		Convey("When building the detail report", func() {
			m := toMap(analysis.Build(analysis.ModeDetail, ps))

			Convey("Then full records and categories are present without a summary", func() {
				p := m["projects"].([]any)[0].(map[string]any)
				So(len(p["evaluations"].([]any)), ShouldEqual, 13)
				So(m, ShouldContainKey, "categoryAnalysis")
				So(m, ShouldNotContainKey, "summary")
				So(m, ShouldNotContainKey, "statistics")
			})
		})
	})

	Convey("Given no projects", t, func() {
		for _, mode := range []analysis.Mode{analysis.ModeAll, analysis.ModeSummary, analysis.ModeDetail} {
			m := toMap(analysis.Build(mode, nil))
			So(m["projectCount"], ShouldEqual, 0.0)
			So(m["projects"], ShouldResemble, []any{})
		}

		all := toMap(analysis.Build(analysis.ModeAll, nil))
		summary := all["summary"].(map[string]any)
		So(summary["averageScore"], ShouldEqual, 0.0)
		So(summary["maxScore"], ShouldEqual, 0.0)
		So(summary["minScore"], ShouldEqual, 0.0)
		So(all["categoryAnalysis"], ShouldResemble, []any{})

		sum := toMap(analysis.Build(analysis.ModeSummary, nil))
		So(sum["averageScore"], ShouldEqual, 0.0)
		So(sum["statistics"].(map[string]any)["average"], ShouldEqual, 0.0)
	})
}
