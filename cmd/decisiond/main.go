package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"decision_engine/internal/api"
	"decision_engine/internal/config"
	"decision_engine/internal/processor"
	"decision_engine/pkg/crypto"
	"decision_engine/pkg/metrics"
	"decision_engine/pkg/tracing"
)

const (
	appName    = "decision_engine"
	appVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("Starting application",
		slog.String("name", appName),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("metrics_addr", cfg.MetricsAddr),
		slog.Bool("signing_enabled", cfg.SigningKey != ""),
		slog.String("trace_exporter", cfg.TraceExporter))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Application failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Application shutdown complete")
}

func setupLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	tracerProvider, err := tracing.NewTracerProvider(tracing.Options{
		ServiceName:    appName,
		ServiceVersion: appVersion,
		Exporter:       cfg.TraceExporter,
	})
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tracerProvider)

	metricsCollector := metrics.NewMetricsCollector(logger)
	signer := crypto.NewSigner(cfg.SigningKey, logger)
	decisionProcessor := processor.NewDecisionProcessor(cfg.Constants, time.Now, logger,
		processor.WithTracerProvider(tracerProvider))
	apiHandler := api.NewAPIHandler(decisionProcessor, metricsCollector, signer, logger, cfg.RequestTimeout)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(apiHandler, cfg.AllowedOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	metricsServer := metricsCollector.NewMetricsServer(cfg.MetricsAddr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("addr", httpServer.Addr))
		return listen(httpServer)
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("addr", metricsServer.Addr))
		return listen(metricsServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		return shutdown(logger, cfg.ShutdownTimeout, httpServer, metricsServer, metricsCollector, tracerProvider)
	})

	return g.Wait()
}

func listen(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func shutdown(
	logger *slog.Logger,
	timeout time.Duration,
	httpServer *http.Server,
	metricsServer *http.Server,
	metricsCollector *metrics.MetricsCollector,
	tracerProvider *sdktrace.TracerProvider,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if err := metricsCollector.Shutdown(ctx); err != nil {
		logger.Error("Metrics collector shutdown failed", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		logger.Error("Tracer provider shutdown failed", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
