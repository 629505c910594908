package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glowup/internal/advice"
	"glowup/internal/api"
	"glowup/internal/booking"
	"glowup/internal/catalog"
	"glowup/internal/config"
	"glowup/internal/domain"
	"glowup/internal/export"
	"glowup/internal/logging"
	"glowup/internal/metrics"
	"glowup/internal/notify"
	"glowup/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", cfg.Catalog.Path).Msg("load catalog")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bookingStore, err := store.New(ctx, cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("init booking store")
		return err
	}
	defer bookingStore.Close()
	logger.Info().Str("backend", bookingStore.Backend()).Msg("booking store ready")

	notifier := initNotifier(cfg, &logger)

	bookings := booking.NewService(
		bookingStore,
		cat,
		notifier,
		&logger,
		time.Duration(cfg.Admin.UpdateTimeoutSec)*time.Second,
	)

	advisor := advice.NewClient(cfg.Advice, &logger)
	exporter := export.NewExporter(cfg.Exports.Path, cat, &logger)
	guard := api.NewGuard(api.NewTokenAuthenticator(cfg.Admin.Token), cfg.Server.RateLimit)

	httpServer := api.NewHTTPServer(cfg.Server, bookings, bookingStore, cat, advisor, exporter, guard, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) domain.Notifier {
	notifier, err := notify.NewTelegram(cfg.Telegram, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram notifier init failed, continuing without notifications")
		return booking.NoopNotifier{}
	}
	if notifier == nil {
		return booking.NoopNotifier{}
	}
	return notifier
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
