package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-artifact-index/services"
)

// SearchHandler handles search requests with the query in the JSON body.
// Request Body: services.ArtifactQuery
func (api *API) SearchHandler(c *gin.Context) {
	var query services.ArtifactQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		SendBindError(c, err)
		return
	}
	api.search(c, query)
}

// SearchByQueryStringHandler handles search requests with the query in the
// URL, e.g. /registries/default/_search?tool=cmake&version_range=>=3
func (api *API) SearchByQueryStringHandler(c *gin.Context) {
	var query services.ArtifactQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid query parameters: "+err.Error())
		return
	}
	api.search(c, query)
}

func (api *API) search(c *gin.Context, query services.ArtifactQuery) {
	name := c.Param("name")
	if result := ValidateRegistryName(name); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	result, err := api.engine.Search(name, query)
	if err != nil {
		SendEngineError(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
