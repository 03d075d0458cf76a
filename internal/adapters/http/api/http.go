// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"

	"github.com/okian/evalsheet/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service.
type Dependencies interface {
	ReportProvider
	StatsProvider
}

// Server wires HTTP routes for the evaluation API.
type Server struct {
	log                logger.Logger
	now                Clock
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	evaluationsHandler *EvaluationsHandler
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the envelope timestamp source.
func WithClock(now Clock) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for access and error lines.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("api")
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps, s.now)
	s.evaluationsHandler = NewEvaluationsHandler(deps, s.now, s.log)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/evaluations", MetricsMiddleware(s.evaluationsHandler.HandleGetEvaluations, "evaluations"))
	mux.HandleFunc("/exec", MetricsMiddleware(s.evaluationsHandler.HandleGetEvaluations, "exec"))
}

// Handler wraps h with request id and access log middleware.
func (s *Server) Handler(h http.Handler) http.Handler {
	return RequestIDMiddleware(AccessLogMiddleware(s.log, h))
}
