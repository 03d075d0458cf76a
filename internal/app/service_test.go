package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/evalsheet/internal/adapters/grid"
	service "github.com/okian/evalsheet/internal/app"
	"github.com/okian/evalsheet/internal/config"
	"github.com/okian/evalsheet/internal/domain/analysis"
	"github.com/okian/evalsheet/internal/domain/cell"
	"github.com/okian/evalsheet/internal/domain/evaluation"
	"github.com/okian/evalsheet/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// twoProjects is a sheet with Bridge A (72.5), a blank pair, and Tunnel B (60).
func twoProjects() cell.Grid {
	rows := make([][]cell.Value, 22)
	for i := range rows {
		rows[i] = make([]cell.Value, 10)
	}
	rows[4][4] = cell.Text("2024-04-01")
	rows[5][4] = cell.Text("Bridge A")
	rows[21][4] = cell.Number(72.5)
	rows[8][4] = cell.Number(2.8)
	rows[8][5] = cell.Number(0.934)

	rows[5][6] = cell.Text("Unused")
	rows[21][6] = cell.Number(0)

	rows[4][8] = cell.Text("2024-05-10")
	rows[5][8] = cell.Text("Tunnel B")
	rows[21][8] = cell.Number(60)
	rows[8][8] = cell.Number(1.5)
	return cell.Grid(rows)
}

func started(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(append([]service.Option{service.WithLogger(logger.Nop())}, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_Start(t *testing.T) {
	Convey("Given a service with an injected reader", t, func() {
		svc := service.New(service.WithReader(&grid.Static{Grid: twoProjects(), Name: "fixture"}))
		defer svc.Stop()

		Convey("When reading before start", func() {
			_, err := svc.Report(context.Background(), "all")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should be marked as started", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["source"], ShouldEqual, "static:fixture")
			})

			Convey("Then a sheet read carries the resolved title", func() {
				sh, err := svc.Sheet(context.Background())
				So(err, ShouldBeNil)
				So(sh.Title, ShouldEqual, "fixture")
				So(len(sh.Cells), ShouldEqual, 22)
			})

			Convey("Then starting again is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})

			Convey("Then stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a service without any source", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))

		Convey("Then start fails with an unavailable source", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, grid.ErrSourceUnavailable), ShouldBeTrue)
		})
	})
}

func TestService_Report(t *testing.T) {
	Convey("Given a started service over two projects", t, func() {
		svc := started(t, service.WithReader(&grid.Static{Grid: twoProjects()}))
		ctx := context.Background()

		Convey("When building the full report", func() {
			rep, err := svc.Report(ctx, "all")
			So(err, ShouldBeNil)

			full, ok := rep.(analysis.FullReport)
			So(ok, ShouldBeTrue)

			Convey("Then the blank pair is skipped and order is kept", func() {
				So(full.ProjectCount, ShouldEqual, 2)
				So(full.Projects[0].Name, ShouldEqual, "Bridge A")
				So(full.Projects[1].Name, ShouldEqual, "Tunnel B")
				So(full.Projects[0].Evaluations[0].Rate, ShouldEqual, 93.4)
			})

			Convey("Then the summary is computed over totals", func() {
				So(full.Summary.AverageScore.String(), ShouldEqual, "66.3")
				So(full.Summary.MaxScore, ShouldEqual, 72.5)
				So(full.Summary.MinScore, ShouldEqual, 60.0)
				So(len(full.CategoryAnalysis), ShouldEqual, 7)
			})

			Convey("Then stats reflect the read", func() {
				stats := svc.GetStats()
				So(stats["reads"], ShouldEqual, 1)
				So(stats["lastProjects"], ShouldEqual, 2)
				So(stats["lastSkipped"], ShouldEqual, 1)
				So(stats["lastRead"], ShouldNotBeEmpty)
			})
		})

		Convey("When building the summary report", func() {
			rep, err := svc.Report(ctx, "summary")
			So(err, ShouldBeNil)

			sum, ok := rep.(analysis.SummaryReport)
			So(ok, ShouldBeTrue)
			So(sum.Statistics.Count, ShouldEqual, 2)
			So(sum.Statistics.Range.String(), ShouldEqual, "12.5")
			So(sum.Projects[1].Date, ShouldEqual, "2024-05-10")
		})

		Convey("When building the detail report", func() {
			rep, err := svc.Report(ctx, "detail")
			So(err, ShouldBeNil)
			_, ok := rep.(analysis.DetailReport)
			So(ok, ShouldBeTrue)
			So(rep.Count(), ShouldEqual, 2)
		})

		Convey("When the mode is unknown", func() {
			rep, err := svc.Report(ctx, "everything")
			So(err, ShouldBeNil)
			_, ok := rep.(analysis.FullReport)
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given the zero-total policy turned off", t, func() {
		svc := started(t,
			service.WithReader(&grid.Static{Grid: twoProjects()}),
			service.WithExtractorOptions(evaluation.WithSkipZeroTotal(false)),
		)

		Convey("Then the named zero-total pair becomes a project", func() {
			projects, err := svc.Projects(context.Background())
			So(err, ShouldBeNil)
			So(len(projects), ShouldEqual, 3)
			So(projects[1].Name, ShouldEqual, "Unused")
			So(projects[1].TotalScore, ShouldEqual, 0.0)
		})
	})

	Convey("Given a reader that fails", t, func() {
		cause := errors.New("quota exceeded")
		svc := started(t, service.WithReader(&grid.Static{Err: cause}))

		_, err := svc.Report(context.Background(), "all")

		Convey("Then the error is returned and counted", func() {
			So(errors.Is(err, cause), ShouldBeTrue)
			stats := svc.GetStats()
			So(stats["readErrors"], ShouldEqual, 1)
			So(stats["lastError"], ShouldEqual, "quota exceeded")
		})
	})

	Convey("Given an empty sheet", t, func() {
		svc := started(t, service.WithReader(&grid.Static{}))

		Convey("Then reports have zero projects, not an error", func() {
			rep, err := svc.Report(context.Background(), "summary")
			So(err, ShouldBeNil)
			So(rep.Count(), ShouldEqual, 0)
		})
	})
}

// slowReader blocks until its context is done.
type slowReader struct{}

func (slowReader) Read(ctx context.Context) (grid.Sheet, error) {
	<-ctx.Done()
	return grid.Sheet{}, ctx.Err()
}

func (slowReader) Describe() string { return "slow" }

func TestService_ReadTimeout(t *testing.T) {
	Convey("Given a reader slower than the read timeout", t, func() {
		svc := started(t, service.WithReader(slowReader{}), service.WithReadTimeout(20*time.Millisecond))

		_, err := svc.Grid(context.Background())

		Convey("Then the read is cancelled", func() {
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})
}

func TestFromConfig(t *testing.T) {
	Convey("Given a config with empty optional settings", t, func() {
		cfg := config.New(context.Background())

		src := service.SourceFromConfig(cfg)

		Convey("Then they map to nil and the workbook is selected", func() {
			So(src.SpreadsheetID, ShouldBeNil)
			So(src.SheetName, ShouldBeNil)
			So(src.Kind(), ShouldEqual, "workbook")
			So(src.Location.String(), ShouldEqual, "Asia/Tokyo")
		})
	})

	Convey("Given a config naming a spreadsheet and sheet", t, func() {
		cfg := config.New(context.Background())
		cfg.SpreadsheetID = "abc"
		cfg.SheetName = "内訳"

		src := service.SourceFromConfig(cfg)

		So(*src.SpreadsheetID, ShouldEqual, "abc")
		So(*src.SheetName, ShouldEqual, "内訳")
		So(src.Kind(), ShouldEqual, "sheets")
		So(len(service.FromConfig(cfg)), ShouldEqual, 3)
	})
}
