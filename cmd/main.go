package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/attrib/internal/adapters/http/api"
	"github.com/okian/attrib/internal/adapters/http/swagger"
	"github.com/okian/attrib/internal/adapters/provider"
	service "github.com/okian/attrib/internal/app"
	"github.com/okian/attrib/internal/config"
	"github.com/okian/attrib/internal/domain/normalize"
	"github.com/okian/attrib/internal/domain/scoring"
	"github.com/okian/attrib/pkg/logger"
	"github.com/okian/attrib/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(metricsOptions(cfg)...)

	svc := newService(cfg, log)

	go startSystemMetricsUpdater(ctx, metrics.RefreshInterval())

	srv := newHTTPServer(ctx, cfg, svc)
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("provider", cfg.Provider),
			logger.String("default_sport", cfg.DefaultSport))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// metricsOptions maps the metrics settings onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBuckets),
	}
}

// newProvider builds the configured game-data provider.
func newProvider(cfg *config.Config, log logger.Logger) provider.Provider {
	if cfg.Provider == config.ProviderESPN {
		return provider.NewESPN(
			provider.WithBaseURL(cfg.ESPNBaseURL),
			provider.WithTimeout(cfg.ESPNTimeout),
			provider.WithRateLimit(cfg.ESPNRPS, cfg.ESPNBurst),
			provider.WithBreaker(cfg.BreakerMaxRequests, cfg.BreakerTimeout, cfg.BreakerFailures),
			provider.WithESPNLogger(log.Named("espn")),
		)
	}
	return provider.NewMock(provider.WithSeed(cfg.MockSeed))
}

// newService wires the calculator and provider into the service.
func newService(cfg *config.Config, log logger.Logger) *service.Service {
	calc := scoring.NewCalculator(
		scoring.WithProfilesFromConfig(cfg.Profiles),
		scoring.WithDefaultConfidence(cfg.Confidence),
		scoring.WithNormalizer(normalize.New(normalize.WithDefaults(cfg.Inputs))),
	)
	return service.New(
		service.WithCalculator(calc),
		service.WithProvider(newProvider(cfg, log)),
		service.WithDefaultSport(cfg.DefaultSport),
		service.WithProviderTimeout(cfg.ProviderTimeout),
		service.WithLogger(log.Named("service")),
	)
}

// newHTTPServer registers the API and docs routes.
func newHTTPServer(ctx context.Context, cfg *config.Config, svc *service.Service) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)

	// Provider calls run under the request, so the write deadline has to
	// cover the provider timeout of both sequential fetches.
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      2*cfg.ProviderTimeout + readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
