package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/evalsheet/internal/domain/analysis"
	"github.com/okian/evalsheet/pkg/logger"
	"github.com/okian/evalsheet/pkg/metrics"
)

// ReportProvider builds a report for the requested mode.
type ReportProvider interface {
	Report(ctx context.Context, mode string) (analysis.Report, error)
}

// EvaluationsHandler serves GET /evaluations?mode=all|summary|detail.
type EvaluationsHandler struct {
	reports ReportProvider
	now     Clock
	log     logger.Logger
}

// NewEvaluationsHandler creates a new evaluations handler.
func NewEvaluationsHandler(reports ReportProvider, now Clock, log logger.Logger) *EvaluationsHandler {
	return &EvaluationsHandler{reports: reports, now: now, log: log}
}

// HandleGetEvaluations reads the sheet and writes the report envelope. The
// envelope echoes the requested mode even when it falls back to "all".
func (h *EvaluationsHandler) HandleGetEvaluations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_evaluations"
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.fail(w, r, NewKind(op, ErrMethodNotAllowed))
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = string(analysis.ModeAll)
	}

	rep, err := h.reports.Report(r.Context(), mode)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	if err := writeSuccess(w, h.now, mode, rep); err != nil {
		h.fail(w, r, Wrap("api.encode_evaluations", err))
	}
}

func (h *EvaluationsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	typ := errorType(err)
	metrics.RecordHTTPError(endpointName(r.URL.Path), typ)
	h.log.Error(r.Context(), "evaluations request failed",
		logger.String("errorType", typ),
		logger.String("error", describe(err)),
	)
	writeFailure(w, h.now, err)
}

func endpointName(path string) string {
	return strings.Trim(path, "/")
}
