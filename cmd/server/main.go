// Package main provides the entry point for the culturology API server.
// It loads configuration, wires services through the DI container and serves the gin router.
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

	"culturology/internal/config"
	"culturology/internal/di"
	"culturology/internal/handlers"
	"culturology/internal/observability"
	contextutils "culturology/internal/utils"
	"culturology/internal/version"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
)

// Application encapsulates the main application logic and can be tested
type Application struct {
	container di.ServiceContainerInterface
	router    *gin.Engine
}

// NewApplication builds the router from the container's services
func NewApplication(container di.ServiceContainerInterface) (*Application, error) {
	cultureService, err := container.GetCultureService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get culture service")
	}

	quizGenerator, err := container.GetQuizGenerator()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get quiz generator")
	}

	quizEntryService, err := container.GetQuizEntryService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get quiz entry service")
	}

	mediaService, err := container.GetMediaService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get media service")
	}

	chatService, err := container.GetChatService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get chat service")
	}

	router := handlers.NewRouter(
		container.GetConfig(),
		cultureService,
		quizGenerator,
		quizEntryService,
		mediaService,
		chatService,
		container.GetSchemaLoader(),
		container.GetLogger(),
	)

	return &Application{
		container: container,
		router:    router,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
func (a *Application) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.router,
		ReadHeaderTimeout: config.ServerReadTimeout,
		ReadTimeout:       config.ServerReadTimeout,
		WriteTimeout:      config.ServerWriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return contextutils.WrapError(err, "server failed")
	}
}

// Shutdown gracefully shuts down the application
func (a *Application) Shutdown(ctx context.Context) error {
	return a.container.Shutdown(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.OpenTelemetry.ServiceVersion = version.Version

	tp, mp, logger, err := observability.SetupObservabilityWithLevel(&cfg.OpenTelemetry, config.ServiceName,
		observability.ParseLevel(cfg.Server.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if tp, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
		_ = logger.Sync()
	}()

	logger.Info(ctx, "Starting culturology service", map[string]interface{}{
		"port":     cfg.Server.Port,
		"logLevel": cfg.Server.LogLevel,
		"version":  version.Version,
		"ai_model": cfg.AI.Model,
		"ai_key":   contextutils.MaskAPIKey(cfg.AI.APIKey),
		"database": contextutils.MaskDatabaseURL(cfg.Database.URL),
	})

	var meterProvider metric.MeterProvider
	if mp != nil {
		meterProvider = mp
	}
	container := di.NewServiceContainer(cfg, logger, meterProvider)
	if err := container.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize services", err, nil)
		os.Exit(1)
	}

	app, err := NewApplication(container)
	if err != nil {
		logger.Error(ctx, "Failed to create application", err, nil)
		_ = container.Shutdown(context.Background())
		os.Exit(1)
	}

	if err := app.Run(ctx, cfg.Server.Port); err != nil {
		logger.Error(ctx, "Application failed", err, nil)
	} else {
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully", nil)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during application shutdown", err, nil)
		return
	}

	logger.Info(ctx, "Shutdown completed successfully", nil)
}
