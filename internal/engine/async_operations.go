package engine

import (
	"context"
	"fmt"

	"github.com/gcbaptista/go-artifact-index/internal/errors"
	"github.com/gcbaptista/go-artifact-index/model"
)

// ReindexAsync regenerates a registry index in the background and returns
// the job tracking it.
func (e *Engine) ReindexAsync(name string) (string, error) {
	r, exists := e.lookup(name)
	if !exists {
		return "", errors.NewRegistryNotFoundError(name)
	}

	jobID := e.jobManager.CreateJob(model.JobTypeReindex, name, map[string]string{
		"location": r.Location(),
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		report, err := r.Regenerate(ctx, func(done, total int) {
			e.jobManager.UpdateJobProgress(job.ID, done, total, "indexing manifests")
		})
		if err != nil {
			return err
		}
		if err := r.Save(); err != nil {
			return err
		}
		e.jobManager.UpdateJobProgress(job.ID, report.Indexed+report.Skipped, report.Indexed+report.Skipped,
			fmt.Sprintf("indexed %d, skipped %d", report.Indexed, report.Skipped))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to start reindex job: %w", err)
	}

	return jobID, nil
}

// GetJob retrieves a job by ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns the jobs of a registry, optionally filtered by status.
func (e *Engine) ListJobs(registryName string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(registryName, status)
}
