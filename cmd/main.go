package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/eventpulse/internal/adapters/calendar"
	"github.com/okian/eventpulse/internal/adapters/http/api"
	"github.com/okian/eventpulse/internal/adapters/http/swagger"
	"github.com/okian/eventpulse/internal/adapters/repository"
	"github.com/okian/eventpulse/internal/adapters/ticketing"
	app "github.com/okian/eventpulse/internal/app"
	"github.com/okian/eventpulse/internal/config"
	"github.com/okian/eventpulse/internal/importer"
	"github.com/okian/eventpulse/pkg/logger"
	"github.com/okian/eventpulse/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	initMetrics(cfg.Metrics)

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "eventpulse stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// run wires the service and serves HTTP until ctx ends.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store := repository.NewMemoryStore(repository.WithLogger(log.Named("store")))
	defer func() { _ = store.Close() }()

	svc := newService(cfg, store, log)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
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

// newService builds the service from configuration. The importer is only
// wired when an API key is configured.
func newService(cfg *config.Config, store repository.Store, log logger.Logger) *app.Service {
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithCalendar(calendar.NewMemoryCalendar()),
		app.WithWeights(cfg.Weights),
		app.WithCalendarWindow(cfg.CalendarWindow()),
		app.WithRecommendationLimit(cfg.RecommendationLimit),
		app.WithSessionTTL(cfg.SessionTTL()),
	}
	if im := newImporter(cfg, store, log); im != nil {
		opts = append(opts, app.WithImporter(im))
	}
	return app.New(opts...)
}

func newImporter(cfg *config.Config, store repository.Store, log logger.Logger) *importer.Importer {
	ic := cfg.Importer
	if ic.APIKey == "" {
		log.Info(context.Background(), "ticketing import disabled; no api key configured")
		return nil
	}
	client := ticketing.NewClient(ic.APIKey,
		ticketing.WithBaseURL(ic.BaseURL),
		ticketing.WithTimeout(cfg.ImportTimeout()),
		ticketing.WithLogger(log.Named("ticketing")),
	)
	return importer.New(client, store,
		importer.WithCenter(ic.Latitude, ic.Longitude, ic.RadiusKm),
		importer.WithPaging(ic.PageSize, ic.MaxPages),
		importer.WithInterval(cfg.ImportInterval()),
		importer.WithLogger(log.Named("importer")),
	)
}

func newMux(ctx context.Context, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, log.Named("api")).Register(ctx, mux)
	return mux
}

// initMetrics applies the configured series names before anything records.
func initMetrics(m config.Metrics) {
	metrics.Init(
		metrics.WithNamespace(m.Namespace),
		metrics.WithSubsystem(m.Subsystem),
		metrics.WithLatencyBuckets(m.LatencyBucketsMs),
		metrics.WithConstLabels(m.Labels),
	)
}

// startSystemMetricsUpdater updates runtime metrics until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
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
