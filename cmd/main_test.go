package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/okian/evalsheet/internal/adapters/grid"
	app "github.com/okian/evalsheet/internal/app"
	"github.com/okian/evalsheet/internal/config"
	"github.com/okian/evalsheet/internal/domain/cell"
	"github.com/okian/evalsheet/pkg/logger"
	"github.com/okian/evalsheet/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func sheetWithOneProject() cell.Grid {
	rows := make([][]cell.Value, 22)
	for i := range rows {
		rows[i] = make([]cell.Value, 6)
	}
	rows[4][4] = cell.Text("2024-04-01")
	rows[5][4] = cell.Text("Bridge A")
	rows[21][4] = cell.Number(72.5)
	return cell.Grid(rows)
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("EVALSHEET_ADDR", ":8080")
			_ = os.Setenv("EVALSHEET_SHEET_NAME", "内訳")
			defer func() {
				_ = os.Unsetenv("EVALSHEET_ADDR")
				_ = os.Unsetenv("EVALSHEET_SHEET_NAME")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(*app.SourceFromConfig(cfg).SheetName, convey.ShouldEqual, "内訳")
			})
		})

		convey.Convey("When serving the assembled handler", func() {
			svc := app.New(
				app.WithLogger(logger.Nop()),
				app.WithReader(&grid.Static{Grid: sheetWithOneProject()}),
			)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			h := newHandler(svc, logger.Nop())

			convey.Convey("Then the evaluations endpoint answers", func() {
				req := httptest.NewRequest("GET", "/evaluations?mode=summary", http.NoBody)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var body struct {
					Success bool   `json:"success"`
					Mode    string `json:"mode"`
					Data    struct {
						ProjectCount int    `json:"projectCount"`
						AverageScore string `json:"averageScore"`
					} `json:"data"`
				}
				convey.So(json.Unmarshal(w.Body.Bytes(), &body), convey.ShouldBeNil)
				convey.So(body.Success, convey.ShouldBeTrue)
				convey.So(body.Mode, convey.ShouldEqual, "summary")
				convey.So(body.Data.ProjectCount, convey.ShouldEqual, 1)
				convey.So(body.Data.AverageScore, convey.ShouldEqual, "72.5")
			})

			convey.Convey("Then docs, landing page and metrics are mounted", func() {
				for _, path := range []string{"/", "/api-docs", "/openapi.yaml", "/healthz", "/stats"} {
					req := httptest.NewRequest("GET", path, http.NoBody)
					w := httptest.NewRecorder()
					h.ServeHTTP(w, req)
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New(context.Background())
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(append(metricsOptions(cfg), metrics.WithPrometheusRegistry(reg))...)

		m.RecordReport("all")
		m.RecordGridRead("workbook", 120, 22, 6, nil)

		families, err := reg.Gather()
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then metrics are named and labelled from the config", func() {
			var reports, reads bool
			for _, f := range families {
				switch f.GetName() {
				case "evalsheet_reader_reports_total":
					reports = true
					label := f.GetMetric()[0].GetLabel()[1]
					convey.So(label.GetName(), convey.ShouldEqual, "sheet_source")
					convey.So(label.GetValue(), convey.ShouldEqual, "workbook:evaluation.xlsx")
				case "evalsheet_reader_grid_read_duration_milliseconds":
					reads = true
					buckets := f.GetMetric()[0].GetHistogram().GetBucket()
					convey.So(len(buckets), convey.ShouldEqual, latencyBucketCount)
					convey.So(buckets[len(buckets)-1].GetUpperBound(), convey.ShouldAlmostEqual, 15000, 0.01)
				}
			}
			convey.So(reports, convey.ShouldBeTrue)
			convey.So(reads, convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given no read timeout", t, func() {
		cfg := config.New(context.Background())
		cfg.ReadTimeoutMS = 0

		convey.So(len(metricsOptions(cfg)), convey.ShouldEqual, 3)
	})
}
