// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"culturology/api"
	"culturology/internal/config"
	"culturology/internal/database"
	"culturology/internal/middleware"
	"culturology/internal/observability"
	"culturology/internal/services"
	contextutils "culturology/internal/utils"

	"go.opentelemetry.io/otel/metric"
)

// Service names registered by the container
const (
	ServiceCulture       = "culture"
	ServiceQuizEntry     = "quiz_entry"
	ServiceMedia         = "media"
	ServiceAIClient      = "ai_client"
	ServiceQuizGenerator = "quiz_generator"
	ServiceChat          = "chat"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetCultureService() (services.CultureServiceInterface, error)
	GetQuizEntryService() (services.QuizEntryServiceInterface, error)
	GetMediaService() (services.MediaServiceInterface, error)
	GetAIClient() (services.AIClientInterface, error)
	GetQuizGenerator() (services.QuizGeneratorInterface, error)
	GetChatService() (services.ChatServiceInterface, error)
	GetSchemaLoader() *middleware.SchemaLoader
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	meterProvider metric.MeterProvider
	dbManager     *database.Manager
	db            *sql.DB
	schemaLoader  *middleware.SchemaLoader
	services      map[string]interface{}
	order         []string
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container. A nil meter provider
// falls back to the global one installed by observability setup.
func NewServiceContainer(cfg *config.Config, logger *observability.Logger, mp metric.MeterProvider) *ServiceContainer {
	return &ServiceContainer{
		cfg:           cfg,
		logger:        logger,
		meterProvider: mp,
		services:      make(map[string]interface{}),
	}
}

// Initialize sets up all services and their dependencies
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDBWithConfig(sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	if err := sc.initializeServices(ctx); err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapErrorf(err, "failed to initialize services")
	}

	if err := sc.startupServices(ctx); err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapErrorf(err, "failed to startup services")
	}

	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetCultureService returns the culture service
func (sc *ServiceContainer) GetCultureService() (services.CultureServiceInterface, error) {
	return GetServiceAs[services.CultureServiceInterface](sc, ServiceCulture)
}

// GetQuizEntryService returns the stored quiz entry service
func (sc *ServiceContainer) GetQuizEntryService() (services.QuizEntryServiceInterface, error) {
	return GetServiceAs[services.QuizEntryServiceInterface](sc, ServiceQuizEntry)
}

// GetMediaService returns the media service
func (sc *ServiceContainer) GetMediaService() (services.MediaServiceInterface, error) {
	return GetServiceAs[services.MediaServiceInterface](sc, ServiceMedia)
}

// GetAIClient returns the chat completion client
func (sc *ServiceContainer) GetAIClient() (services.AIClientInterface, error) {
	return GetServiceAs[services.AIClientInterface](sc, ServiceAIClient)
}

// GetQuizGenerator returns the quiz generation engine
func (sc *ServiceContainer) GetQuizGenerator() (services.QuizGeneratorInterface, error) {
	return GetServiceAs[services.QuizGeneratorInterface](sc, ServiceQuizGenerator)
}

// GetChatService returns the chat service
func (sc *ServiceContainer) GetChatService() (services.ChatServiceInterface, error) {
	return GetServiceAs[services.ChatServiceInterface](sc, ServiceChat)
}

// GetSchemaLoader returns the request schemas compiled from the embedded OpenAPI document
func (sc *ServiceContainer) GetSchemaLoader() *middleware.SchemaLoader {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.schemaLoader
}

// GetDatabase returns the database instance
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

func (sc *ServiceContainer) register(name string, service interface{}) {
	sc.services[name] = service
	sc.order = append(sc.order, name)
}

// startupServices starts all services that implement a Startup hook, in registration order
func (sc *ServiceContainer) startupServices(ctx context.Context) error {
	for _, name := range sc.order {
		if lifecycleService, ok := sc.services[name].(interface{ Startup(context.Context) error }); ok {
			sc.logger.Info(ctx, "Starting service", map[string]interface{}{"service": name})
			if err := lifecycleService.Startup(ctx); err != nil {
				return contextutils.WrapErrorf(err, "failed to startup service %s", name)
			}
		}
	}
	return nil
}

// cleanup handles shutdown of all services
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error

	for i := len(sc.order) - 1; i >= 0; i-- {
		name := sc.order[i]
		if lifecycleService, ok := sc.services[name].(interface{ Shutdown(context.Context) error }); ok {
			sc.logger.Info(ctx, "Shutting down service", map[string]interface{}{"service": name})
			if err := lifecycleService.Shutdown(ctx); err != nil {
				sc.logger.Error(ctx, "Failed to shutdown service", err, map[string]interface{}{"service": name})
				errors = append(errors, contextutils.WrapErrorf(err, "service %s shutdown failed", name))
			}
		}
	}

	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil
	sc.services = make(map[string]interface{})
	sc.order = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(ctx context.Context) error {
	metrics, err := observability.NewQuizMetrics(sc.meterProvider)
	if err != nil {
		return err
	}

	templates, err := services.NewAITemplateManager()
	if err != nil {
		return err
	}

	// an unusable catalog would leave quiz generation without its fallback
	catalog, err := services.DefaultFallbackCatalog()
	if err != nil {
		return err
	}

	loader := middleware.NewSchemaLoader()
	if err := loader.LoadSchemasFromOpenAPI(api.OpenAPISpec); err != nil {
		return contextutils.WrapErrorf(err, "failed to load API schemas")
	}
	sc.schemaLoader = loader

	cultureService := services.NewCultureService(sc.db, sc.logger)
	sc.register(ServiceCulture, cultureService)
	sc.register(ServiceQuizEntry, services.NewQuizEntryService(sc.db, sc.logger))
	sc.register(ServiceMedia, services.NewMediaService(sc.db, sc.logger))

	aiClient := services.NewAIClient(sc.cfg.AI, metrics, sc.logger)
	sc.register(ServiceAIClient, aiClient)

	sc.register(ServiceQuizGenerator, services.NewQuizGenerator(
		cultureService,
		aiClient,
		templates,
		catalog,
		services.NewFallbackSampler(sc.cfg.AI.FallbackSeed),
		sc.cfg.AI,
		metrics,
		sc.logger,
	))
	sc.register(ServiceChat, services.NewChatService(cultureService, aiClient, templates, sc.cfg.AI, sc.logger))

	sc.logger.Info(ctx, "Services initialized", map[string]interface{}{
		"services":         len(sc.order),
		"fallback_entries": catalog.Len(),
		"ai_model":         sc.cfg.AI.Model,
	})
	return nil
}
