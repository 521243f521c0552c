package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-artifact-index/services"
)

// API holds dependencies for API handlers, primarily the registry manager.
type API struct {
	engine services.RegistryManager
	logger *zap.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.RegistryManager, logger *zap.Logger) *API {
	return &API{
		engine: engine,
		logger: logger.Named("api"),
	}
}

// Options configures the router built by NewRouter.
type Options struct {
	MaxRequestBytes int64
	Gatherer        prometheus.Gatherer // served on /metrics when set
}

// NewRouter builds a gin router with the middleware chain and every route.
func NewRouter(engine services.RegistryManager, logger *zap.Logger, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)
	if opts.MaxRequestBytes > 0 {
		router.Use(RequestSizeLimitMiddleware(opts.MaxRequestBytes))
	}
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	SetupRoutes(router, engine, logger)
	return router
}

// SetupRoutes defines all the API routes of the artifact index.
func SetupRoutes(router *gin.Engine, engine services.RegistryManager, logger *zap.Logger) {
	apiHandler := NewAPI(engine, logger)

	router.GET("/health", apiHandler.HealthCheckHandler)

	// Job routes
	router.GET("/jobs/:jobId", apiHandler.GetJobHandler)

	// Registry management routes
	registryRoutes := router.Group("/registries")
	{
		registryRoutes.POST("", apiHandler.AddRegistryHandler)                     // Declare and index a registry
		registryRoutes.GET("", apiHandler.ListRegistriesHandler)                   // List all registries
		registryRoutes.GET("/:name", apiHandler.GetRegistryHandler)                // Registry summary
		registryRoutes.DELETE("/:name", apiHandler.RemoveRegistryHandler)          // Forget a registry
		registryRoutes.POST("/:name/_reindex", apiHandler.ReindexHandler)          // Rebuild from manifests, ?async=true for a job
		registryRoutes.GET("/:name/jobs", apiHandler.ListJobsHandler)              // Jobs of a registry
		registryRoutes.POST("/:name/_search", apiHandler.SearchHandler)            // Query in the body
		registryRoutes.GET("/:name/_search", apiHandler.SearchByQueryStringHandler) // Query in the URL
	}
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "go-artifact-index",
		"registries": len(api.engine.ListRegistries()),
		"timestamp":  time.Now().Unix(),
	})
}
