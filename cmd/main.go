package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/evalsheet/internal/adapters/http/api"
	"github.com/okian/evalsheet/internal/adapters/http/site"
	"github.com/okian/evalsheet/internal/adapters/http/swagger"
	app "github.com/okian/evalsheet/internal/app"
	"github.com/okian/evalsheet/internal/config"
	"github.com/okian/evalsheet/pkg/logger"
	"github.com/okian/evalsheet/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
	// writeMargin is added to the grid read timeout so a slow sheet can
	// still be answered with a failure envelope.
	writeMargin = 5 * time.Second
	// latencyBucketCount is the number of histogram buckets up to the read
	// timeout.
	latencyBucketCount = 12
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// The logger may not exist yet.
		os.Stderr.WriteString("evalsheet: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)

	svc := app.New(append(app.FromConfig(cfg), app.WithLogger(log.Named("service")))...)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(svc, log.Named("api")),
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.ReadTimeout() + writeMargin,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("source", app.SourceFromConfig(cfg).Label()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// metricsOptions names metrics after the config and labels them with the
// sheet being served. Latency buckets stretch to the read timeout.
func metricsOptions(cfg *config.Config) []metrics.Option {
	opts := []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithConstLabels(map[string]string{
			"sheet_source": app.SourceFromConfig(cfg).Label(),
		}),
	}
	if ms := float64(cfg.ReadTimeoutMS); ms > 1 {
		opts = append(opts, metrics.WithHistogramBuckets(
			prometheus.ExponentialBucketsRange(1, ms, latencyBucketCount)))
	}
	return opts
}

// newHandler registers every route and wraps the mux with request id and
// access log middleware.
func newHandler(svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(mux)
	site.Register(mux)

	apiServer := api.NewServer(svc, api.WithLogger(log))
	apiServer.Register(mux)

	return apiServer.Handler(mux)
}

// startSystemMetricsUpdater refreshes system gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.CollectSystem()
		}
	}
}
