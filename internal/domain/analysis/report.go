package analysis

import (
	"github.com/okian/evalsheet/internal/domain/evaluation"
)

// Report is a mode-specific payload ready to be serialised.
type Report interface {
	// Count returns the number of projects the report covers.
	Count() int
}

// ProjectHeadline is the reduced project shape used by summary reports.
type ProjectHeadline struct {
	Date       string  `json:"date"`
	Name       string  `json:"name"`
	TotalScore float64 `json:"totalScore"`
}

// SummaryReport lists project headlines with overall statistics.
type SummaryReport struct {
	ProjectCount int               `json:"projectCount"`
	Projects     []ProjectHeadline `json:"projects"`
	AverageScore Fixed             `json:"averageScore"`
	Statistics   Statistics        `json:"statistics"`
}

// Count implements Report.
func (r SummaryReport) Count() int { return r.ProjectCount }

// DetailReport carries full project records and the category breakdown.
type DetailReport struct {
	ProjectCount     int                  `json:"projectCount"`
	Projects         []evaluation.Project `json:"projects"`
	CategoryAnalysis []CategoryAnalysis   `json:"categoryAnalysis"`
}

// Count implements Report.
func (r DetailReport) Count() int { return r.ProjectCount }

// ScoreSummary is the short average/max/min block of the full report.
type ScoreSummary struct {
	AverageScore Fixed   `json:"averageScore"`
	MaxScore     float64 `json:"maxScore"`
	MinScore     float64 `json:"minScore"`
}

// FullReport is the default report: records, score summary and categories.
type FullReport struct {
	ProjectCount     int                  `json:"projectCount"`
	Projects         []evaluation.Project `json:"projects"`
	Summary          ScoreSummary         `json:"summary"`
	CategoryAnalysis []CategoryAnalysis   `json:"categoryAnalysis"`
}

// Count implements Report.
func (r FullReport) Count() int { return r.ProjectCount }

// Build shapes already-extracted projects for mode. No mode filters records.
func Build(mode Mode, projects []evaluation.Project) Report {
	if projects == nil {
		projects = []evaluation.Project{}
	}

	switch mode {
	case ModeSummary:
		heads := make([]ProjectHeadline, len(projects))
		for i, p := range projects {
			heads[i] = ProjectHeadline{Date: p.Date, Name: p.Name, TotalScore: p.TotalScore}
		}
		return SummaryReport{
			ProjectCount: len(projects),
			Projects:     heads,
			AverageScore: averageScore(projects),
			Statistics:   CalculateStatistics(projects),
		}

	case ModeDetail:
		return DetailReport{
			ProjectCount:     len(projects),
			Projects:         projects,
			CategoryAnalysis: AnalyzeCategories(projects),
		}
	}

	stats := CalculateStatistics(projects)
	return FullReport{
		ProjectCount: len(projects),
		Projects:     projects,
		Summary: ScoreSummary{
			AverageScore: averageScore(projects),
			MaxScore:     stats.Max,
			MinScore:     stats.Min,
		},
		CategoryAnalysis: AnalyzeCategories(projects),
	}
}
