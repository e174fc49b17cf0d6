package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"miru/internal/api"
	"miru/internal/booking"
	"miru/internal/config"
	"miru/internal/database"
	"miru/internal/events"
	"miru/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = logger.Level(cfg.LogLevel())

	if err := cfg.EnsureDataDir(); err != nil {
		logger.Fatal().Err(err).Msg("failed to create data directory")
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	bus := events.NewBus(&logger)
	bus.Subscribe(events.AuditLogger(&logger))

	service := booking.NewService(booking.NewSQLRepository(db.DB), booking.WithEvents(bus))

	if cfg.LogLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	rps, burst := cfg.RateLimit()
	router := api.NewRouter(service, api.RouterConfig{
		CORSOrigins: cfg.CORSOrigins(),
		RateLimit:   rps,
		RateBurst:   burst,
	}, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	backup := database.NewBackupService(db, cfg.Backup, cfg.BackupInterval(), &logger)
	go backup.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
	}()

	logger.Info().Str("address", cfg.Server.Address).Msg("Miru booking server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("Miru booking server stopped")
}

func startHealthServer(ctx context.Context, port int, db *database.DB, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	serve(ctx, fmt.Sprintf(":%d", port), mux, "health", logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serve(ctx, fmt.Sprintf(":%d", port), mux, "metrics", logger)
}

func serve(ctx context.Context, addr string, h http.Handler, name string, logger *zerolog.Logger) {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Str("server", name).Msg("listener error")
	}
}
