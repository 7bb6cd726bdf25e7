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

	"github.com/okian/tactile/internal/adapters/http/api"
	"github.com/okian/tactile/internal/adapters/http/site"
	"github.com/okian/tactile/internal/adapters/http/swagger"
	"github.com/okian/tactile/internal/adapters/renderer"
	"github.com/okian/tactile/internal/adapters/sensor"
	service "github.com/okian/tactile/internal/app"
	"github.com/okian/tactile/internal/config"
	"github.com/okian/tactile/pkg/logger"
	"github.com/okian/tactile/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
	firingLogSize             = 256
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "tactile exited", logger.Error(err))
		os.Exit(1)
	}
}

// run wires the application from cfg and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	l := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		l.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	a, err := build(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer a.stop()

	if err := a.start(ctx); err != nil {
		return err
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, a.svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		l.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	l.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	l.Info(ctx, "server stopped")
	return nil
}

// application holds the wired components.
type application struct {
	svc     *service.Service
	source  *sensor.MQTTSource
	handler http.Handler
	logger  logger.Logger
}

// build constructs the renderer, engine, service, optional sensor source
// and the HTTP routes.
func build(ctx context.Context, cfg *config.Config, l logger.Logger) (*application, error) {
	mappings, err := cfg.ModelMappings()
	if err != nil {
		return nil, err
	}

	r, err := renderer.New(cfg.Haptic, l.Named("renderer"))
	if err != nil {
		return nil, err
	}

	firings := service.NewFiringLog(firingLogSize)
	engine, err := service.NewEngine(r,
		service.WithEngineLogger(l.Named("engine")),
		service.WithDefaultCooldown(cfg.DefaultCooldown()),
		service.WithTapCooldown(cfg.TapCooldown()),
		service.WithFlipCooldown(cfg.FlipCooldown()),
		service.WithMaxClockSkew(cfg.MaxClockSkew()),
		service.WithMappings(mappings...),
		service.WithFiringObserver(firings.Add),
	)
	if err != nil {
		return nil, err
	}

	svc := service.New(engine,
		service.WithLogger(l.Named("service")),
		service.WithQueueSize(cfg.QueueSize),
		service.WithAutoStart(cfg.AutoStart),
		service.WithFiringLog(firings),
	)

	a := &application{svc: svc, logger: l}
	if cfg.Sensor.Enabled {
		a.source = sensor.NewMQTTSource(svc,
			sensor.WithBroker(cfg.Sensor.Broker),
			sensor.WithTopic(cfg.Sensor.Topic),
			sensor.WithClientID(config.UniqueClientID(cfg.Sensor.ClientID)),
			sensor.WithLogger(l.Named("sensor")),
		)
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	var opts []api.ServerOption
	if h, ok := renderer.Handler(r); ok {
		opts = append(opts, api.WithHapticsHandler(h))
	}
	api.NewServer(svc, svc, opts...).Register(ctx, mux)
	site.Register(ctx, mux)
	a.handler = mux

	return a, nil
}

// start runs the pipeline and the sensor source. A renderer that cannot
// prepare leaves the engine stopped; it can be started later over HTTP.
func (a *application) start(ctx context.Context) error {
	if err := a.svc.Start(ctx); err != nil {
		if !errors.Is(err, service.ErrEngineUnavailable) {
			return fmt.Errorf("failed to start service: %w", err)
		}
		a.logger.Warn(ctx, "engine unavailable; POST /engine/start to retry", logger.Error(err))
	}

	if a.source != nil {
		if err := a.source.Start(ctx); err != nil {
			a.logger.Warn(ctx, "sensor source unavailable; accepting samples over HTTP only", logger.Error(err))
		}
	}
	return nil
}

func (a *application) stop() {
	if a.source != nil {
		a.source.Stop()
	}
	a.svc.Stop()
	if err := a.svc.Engine().Close(); err != nil {
		a.logger.Warn(context.Background(), "engine close failed", logger.Error(err))
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
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

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
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

// updateServiceMetrics refreshes gauges that are otherwise only touched
// on change.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if mappings, ok := stats["mappings"].(int); ok {
		metrics.UpdateMappingCount(mappings)
	}
	if state, ok := stats["state"].(string); ok {
		metrics.UpdateEngineRunning(state == "running")
	}
}
