package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-artifact-index/model"
	"github.com/gcbaptista/go-artifact-index/services"
)

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Job management not supported by this engine")
		return
	}

	job, err := jobManager.GetJob(jobID)
	if err != nil {
		SendEngineError(c, "get job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobsHandler handles requests to list the jobs of a registry
func (api *API) ListJobsHandler(c *gin.Context) {
	name := c.Param("name")
	statusParam := c.Query("status")

	var statusFilter *model.JobStatus
	if statusParam != "" {
		status := model.JobStatus(statusParam)
		if !status.Valid() {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Unknown job status '"+statusParam+"'")
			return
		}
		statusFilter = &status
	}

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Job management not supported by this engine")
		return
	}

	if _, err := api.engine.GetRegistry(name); err != nil {
		SendEngineError(c, "list jobs", err)
		return
	}

	jobs := jobManager.ListJobs(name, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":          jobs,
		"registry_name": name,
		"total":         len(jobs),
	})
}
