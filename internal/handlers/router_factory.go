package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"culturology/api"
	"culturology/internal/config"
	"culturology/internal/middleware"
	"culturology/internal/observability"
	"culturology/internal/services"
	"culturology/internal/version"
)

// IMPORTANT: When adding new API endpoints, make sure to:
// 1. Add them to api/openapi.yaml, including the request body schema for writes
// 2. Decide whether the endpoint needs the admin key
// 3. Update the router tests

// NewRouter creates the gin engine with all middleware and routes
func NewRouter(
	cfg *config.Config,
	cultureService services.CultureServiceInterface,
	quizGenerator services.QuizGeneratorInterface,
	quizEntryService services.QuizEntryServiceInterface,
	mediaService services.MediaServiceInterface,
	chatService services.ChatServiceInterface,
	schemaLoader *middleware.SchemaLoader,
	logger *observability.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.ErrorRecoveryMiddleware(logger))

	// HTTP request logging
	router.Use(func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.route":       c.FullPath(),
			"http.status_code": statusCode,
			"http.latency_ms":  time.Since(start).Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		switch {
		case statusCode >= 500:
			fields["http.error_type"] = "server_error"
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		case statusCode >= 400:
			fields["http.error_type"] = "client_error"
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		default:
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	})

	// Health check endpoint (defined before tracing)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": config.ServiceName})
	})

	router.Use(observability.GinMiddlewareWithErrorHandling(config.ServiceName)...)

	router.RedirectTrailingSlash = false

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.APIKeyHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{QuizSourceHeader}
	router.Use(cors.New(corsConfig))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Current(config.ServiceName))
	})
	router.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", api.OpenAPISpec)
	})

	cultureHandler := NewCultureHandler(cultureService, logger)
	quizHandler := NewQuizHandler(quizGenerator, logger)
	quizEntryHandler := NewQuizEntryHandler(quizEntryService, logger)
	mediaHandler := NewMediaHandler(mediaService, logger)
	chatHandler := NewChatHandler(chatService, logger)

	requireAdmin := middleware.RequireAdminKey(middleware.AdminKeyConfig{
		Key:  cfg.AdminAPIKey,
		Hash: cfg.AdminAPIKeyHash,
	})

	// the admin check runs before body validation
	validate := middleware.RequestValidationMiddleware(schemaLoader, logger)

	apiGroup := router.Group("/api")
	{
		cultures := apiGroup.Group("/cultures")
		{
			cultures.GET("", cultureHandler.ListCultures)
			cultures.GET("/search", cultureHandler.SearchCultures)
			cultures.POST("", requireAdmin, validate, cultureHandler.CreateCulture)
			cultures.GET("/:slug", cultureHandler.GetCulture)
			cultures.PUT("/:slug", requireAdmin, validate, cultureHandler.UpdateCulture)
			cultures.DELETE("/:slug", requireAdmin, cultureHandler.DeleteCulture)
			cultures.GET("/:slug/quiz", quizHandler.GenerateQuiz)
		}

		apiGroup.POST("/chat/:slug", validate, chatHandler.Ask)
		apiGroup.GET("/map", cultureHandler.MapPoints)

		quiz := apiGroup.Group("/quiz")
		{
			quiz.GET("", quizEntryHandler.ListEntries)
			quiz.POST("", requireAdmin, validate, quizEntryHandler.CreateEntry)
			quiz.GET("/:id", quizEntryHandler.GetEntry)
			quiz.PUT("/:id", requireAdmin, validate, quizEntryHandler.UpdateEntry)
			quiz.DELETE("/:id", requireAdmin, quizEntryHandler.DeleteEntry)
		}

		media := apiGroup.Group("/media")
		{
			media.GET("", mediaHandler.ListMedia)
			media.POST("", requireAdmin, validate, mediaHandler.CreateMedia)
			media.GET("/:id", mediaHandler.GetMedia)
			media.DELETE("/:id", requireAdmin, mediaHandler.DeleteMedia)
		}
	}

	return router
}
