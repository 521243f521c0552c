package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-artifact-index/config"
	"github.com/gcbaptista/go-artifact-index/services"
)

// AddRegistryHandler declares a registry and indexes it before answering.
// Request Body: config.RegistrySettings
func (api *API) AddRegistryHandler(c *gin.Context) {
	var settings config.RegistrySettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		SendBindError(c, err)
		return
	}

	if result := ValidateRegistrySettings(&settings); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	report, err := api.engine.AddRegistry(c.Request.Context(), settings)
	if err != nil {
		SendEngineError(c, "add registry", err)
		return
	}

	api.logger.Info("Registry added through API", zap.String("registry", settings.Name), zap.Int("indexed", report.Indexed))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registry '" + settings.Name + "' added",
		"report":  report,
	})
}

// ListRegistriesHandler lists every registry.
func (api *API) ListRegistriesHandler(c *gin.Context) {
	registries := api.engine.ListRegistries()
	c.JSON(http.StatusOK, gin.H{
		"registries": registries,
		"total":      len(registries),
	})
}

// GetRegistryHandler returns the summary of one registry.
func (api *API) GetRegistryHandler(c *gin.Context) {
	name := c.Param("name")
	if result := ValidateRegistryName(name); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	info, err := api.engine.GetRegistry(name)
	if err != nil {
		SendEngineError(c, "get registry", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// RemoveRegistryHandler forgets a registry and deletes its persisted index.
func (api *API) RemoveRegistryHandler(c *gin.Context) {
	name := c.Param("name")
	if result := ValidateRegistryName(name); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	if err := api.engine.RemoveRegistry(name); err != nil {
		SendEngineError(c, "remove registry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registry '" + name + "' removed"})
}

// ReindexHandler rebuilds a registry index from its manifests. With
// ?async=true the work runs as a job and the job id is returned at once.
func (api *API) ReindexHandler(c *gin.Context) {
	name := c.Param("name")
	if result := ValidateRegistryName(name); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	async := false
	if raw := c.Query("async"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Query parameter 'async' must be a boolean")
			return
		}
		async = parsed
	}

	if async {
		asyncEngine, ok := api.engine.(services.RegistryManagerWithAsyncReindex)
		if !ok {
			SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Background reindexing not supported by this engine")
			return
		}
		jobID, err := asyncEngine.ReindexAsync(name)
		if err != nil {
			SendEngineError(c, "reindex", err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":  "accepted",
			"message": "Reindexing of '" + name + "' started",
			"job_id":  jobID,
		})
		return
	}

	report, err := api.engine.Reindex(c.Request.Context(), name)
	if err != nil {
		SendEngineError(c, "reindex", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Registry '" + name + "' reindexed",
		"report":  report,
	})
}
