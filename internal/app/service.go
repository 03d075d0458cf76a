// Package service reads the evaluation sheet and builds the reports served
// by the HTTP API and the inspection CLI.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/evalsheet/internal/adapters/grid"
	"github.com/okian/evalsheet/internal/config"
	"github.com/okian/evalsheet/internal/domain/analysis"
	"github.com/okian/evalsheet/internal/domain/cell"
	"github.com/okian/evalsheet/internal/domain/evaluation"
	"github.com/okian/evalsheet/pkg/logger"
	"github.com/okian/evalsheet/pkg/metrics"
)

// ErrNotStarted is returned by reads before Start has opened the source.
var ErrNotStarted = errors.New("service not started")

// Service wires a grid reader to the extractor and the aggregator. Every
// request reads the sheet afresh; nothing is cached between requests.
type Service struct {
	mu sync.RWMutex

	source      grid.Source
	reader      grid.Reader
	extractor   *evaluation.Extractor
	extractOpts []evaluation.Option
	readTimeout time.Duration

	started bool

	// Last read, for /stats.
	reads        int
	readErrors   int
	lastRead     time.Time
	lastProjects int
	lastSkipped  int
	lastErr      string

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where Start opens the grid from.
func WithSource(src grid.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithReader injects a ready reader; Start then skips opening a source.
func WithReader(r grid.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.reader = r
		}
	}
}

// WithExtractorOptions configures the record extractor.
func WithExtractorOptions(opts ...evaluation.Option) Option {
	return func(s *Service) {
		s.extractOpts = append(s.extractOpts, opts...)
	}
}

// WithReadTimeout bounds one grid read. Zero disables the bound.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.readTimeout = d
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		readTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.extractor = evaluation.NewExtractor(s.extractOpts...)
	return s
}

// FromConfig builds the options that reproduce cfg.
func FromConfig(cfg *config.Config) []Option {
	loc := cfg.Location()
	return []Option{
		WithSource(SourceFromConfig(cfg)),
		WithReadTimeout(cfg.ReadTimeout()),
		WithExtractorOptions(
			evaluation.WithLocation(loc),
			evaluation.WithSkipZeroTotal(cfg.SkipIfTotalIsZero),
		),
	}
}

// SourceFromConfig maps config strings onto a grid.Source, turning empty
// optional settings into nil.
func SourceFromConfig(cfg *config.Config) grid.Source {
	return grid.Source{
		SpreadsheetID:   optional(cfg.SpreadsheetID),
		SheetName:       optional(cfg.SheetName),
		WorkbookPath:    cfg.WorkbookPath,
		CredentialsFile: cfg.CredentialsFile,
		Endpoint:        cfg.SheetsEndpoint,
		Location:        cfg.Location(),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Start opens the configured source unless a reader was injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.reader == nil {
		r, err := grid.Open(ctx, s.source)
		if err != nil {
			s.logger.Error(ctx, "failed to open grid source",
				logger.String("kind", s.source.Kind()),
				logger.Error(err),
			)
			return err
		}
		s.reader = r
	}

	s.started = true
	s.logger.Info(ctx, "evaluation service started",
		logger.String("source", s.reader.Describe()),
		logger.Duration("readTimeout", s.readTimeout),
	)
	return nil
}

// Stop marks the service stopped. Readers hold no open handles between
// reads, so there is nothing to release.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "evaluation service stopped")
}

// Grid reads the sheet once and returns the raw grid.
func (s *Service) Grid(ctx context.Context) (cell.Grid, error) {
	sh, err := s.Sheet(ctx)
	if err != nil {
		return nil, err
	}
	return sh.Cells, nil
}

// Sheet reads the sheet once and returns its resolved title with the grid.
func (s *Service) Sheet(ctx context.Context) (grid.Sheet, error) {
	s.mu.RLock()
	r, started := s.reader, s.started
	s.mu.RUnlock()
	if !started {
		return grid.Sheet{}, ErrNotStarted
	}

	if s.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.readTimeout)
		defer cancel()
	}

	start := time.Now()
	sh, err := r.Read(ctx)
	took := time.Since(start)
	g := sh.Cells

	kind := sourceKind(r)
	metrics.RecordGridRead(kind, float64(took.Milliseconds()), len(g), g.Width(), err)

	s.mu.Lock()
	s.reads++
	s.lastRead = start
	if err != nil {
		s.readErrors++
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error(ctx, "grid read failed",
			logger.String("source", r.Describe()),
			logger.Duration("took", took),
			logger.Error(err),
		)
		return grid.Sheet{}, err
	}

	s.logger.Info(ctx, "grid read",
		logger.String("source", r.Describe()),
		logger.String("sheet", sh.Title),
		logger.Int("rows", len(g)),
		logger.Int("columns", g.Width()),
		logger.Duration("took", took),
	)
	return sh, nil
}

// Projects reads the sheet and extracts every populated project.
func (s *Service) Projects(ctx context.Context) ([]evaluation.Project, error) {
	g, err := s.Grid(ctx)
	if err != nil {
		return nil, err
	}

	res := s.extractor.Extract(g)
	metrics.RecordExtraction(len(res.Projects), len(res.Skipped))

	s.mu.Lock()
	s.lastProjects = len(res.Projects)
	s.lastSkipped = len(res.Skipped)
	s.mu.Unlock()

	if len(res.Skipped) > 0 {
		s.logger.Debug(ctx, "skipped blank column pairs", logger.Any("columns", res.Skipped))
	}
	return res.Projects, nil
}

// Report reads the sheet and shapes it for mode. Unknown modes build the
// full report.
func (s *Service) Report(ctx context.Context, mode string) (analysis.Report, error) {
	projects, err := s.Projects(ctx)
	if err != nil {
		return nil, err
	}

	m := analysis.ParseMode(mode)
	metrics.RecordReport(string(m))
	return analysis.Build(m, projects), nil
}

// Items returns the item definitions the extractor reads.
func (s *Service) Items() []evaluation.ItemDefinition {
	return s.extractor.Items()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"reads":        s.reads,
		"readErrors":   s.readErrors,
		"lastProjects": s.lastProjects,
		"lastSkipped":  s.lastSkipped,
	}
	if s.reader != nil {
		stats["source"] = s.reader.Describe()
	}
	if !s.lastRead.IsZero() {
		stats["lastRead"] = s.lastRead.UTC().Format(time.RFC3339)
	}
	if s.lastErr != "" {
		stats["lastError"] = s.lastErr
	}
	metrics.CollectSystem()
	return stats
}

// sourceKind labels a reader for metrics.
func sourceKind(r grid.Reader) string {
	switch r.(type) {
	case *grid.SheetsReader:
		return "sheets"
	case *grid.WorkbookReader:
		return "workbook"
	default:
		return "static"
	}
}
