package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hanko-field/configurator/internal/handlers"
	"github.com/hanko-field/configurator/internal/nodemap"
	"github.com/hanko-field/configurator/internal/platform/config"
	"github.com/hanko-field/configurator/internal/platform/observability"
	"github.com/hanko-field/configurator/internal/services"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("configurator")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	telemetry, err := observability.InitTelemetry(observability.TelemetryOptions{
		ServiceName:    "configurator",
		Environment:    cfg.Environment,
		MetricsEnabled: cfg.Telemetry.MetricsEnabled,
	})
	if err != nil {
		logger.Fatal("failed to initialise telemetry", zap.Error(err))
	}

	engineOptions, err := buildEngineOptions(cfg.NodeMap)
	if err != nil {
		logger.Fatal("failed to load path correction rules", zap.String("path", cfg.NodeMap.RulesFile), zap.Error(err))
	}

	configurator, err := services.NewConfiguratorService(services.ConfiguratorServiceDeps{
		EngineOptions:     engineOptions,
		Clock:             time.Now,
		Logger:            observability.NewEventLogger(logger.Named("configurator"), "configurator event"),
		CacheTTL:          cfg.Cache.TTL,
		MaxParameters:     cfg.Limits.MaxParameters,
		SanitizeFragments: true,
	})
	if err != nil {
		logger.Fatal("failed to initialise configurator service", zap.Error(err))
	}

	projectID := strings.TrimSpace(cfg.Telemetry.ProjectID)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID, telemetry.Metrics),
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthVersion(version),
		handlers.WithReadinessCheck("rules", func(context.Context) error {
			_, err := buildEngineOptions(cfg.NodeMap)
			return err
		}),
	)
	configuratorHandlers := handlers.NewConfiguratorHandlers(configurator, cfg.Limits.MaxBodyBytes)

	var opts []handlers.Option
	opts = append(opts, handlers.WithMiddlewares(middlewares...))
	opts = append(opts, handlers.WithHealthHandlers(healthHandlers))
	opts = append(opts, handlers.WithConfiguratorRoutes(configuratorHandlers.Routes))
	if telemetry.Handler != nil {
		opts = append(opts, handlers.WithMetricsHandler(telemetry.Handler))
	}

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("configurator listening", zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Warn("telemetry shutdown error", zap.Error(err))
	}
}

// buildEngineOptions turns the node map configuration into engine options. An empty rules
// path keeps the built-in correction table.
func buildEngineOptions(cfg config.NodeMapConfig) ([]nodemap.Option, error) {
	var opts []nodemap.Option
	if path := strings.TrimSpace(cfg.RulesFile); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		rules, err := nodemap.LoadRules(f)
		if err != nil {
			return nil, err
		}
		normalizer, err := nodemap.NewNormalizer(rules)
		if err != nil {
			return nil, err
		}
		opts = append(opts, nodemap.WithNormalizer(normalizer))
	}
	if len(cfg.SceneLabels) > 0 {
		opts = append(opts, nodemap.WithSceneLabels(cfg.SceneLabels))
	}
	return opts, nil
}
