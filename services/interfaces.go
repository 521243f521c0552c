package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/gcbaptista/go-artifact-index/config"
	"github.com/gcbaptista/go-artifact-index/internal/errors"
	"github.com/gcbaptista/go-artifact-index/model"
)

// ArtifactQuery selects artifacts of one registry. Every non-empty field
// narrows the result; an empty query returns every artifact.
type ArtifactQuery struct {
	ID           string `json:"id,omitempty" form:"id"`                       // Full identity or resolved short name
	IDPrefix     string `json:"id_prefix,omitempty" form:"id_prefix"`         // Identity starts with
	IDSuffix     string `json:"id_suffix,omitempty" form:"id_suffix"`         // Identity ends with
	Pattern      string `json:"pattern,omitempty" form:"pattern"`             // Regular expression over the identity
	Version      string `json:"version,omitempty" form:"version"`             // Exact version
	VersionRange string `json:"version_range,omitempty" form:"version_range"` // Range expression, e.g. ">=1.0.0 <2.0.0"
	VersionAbove string `json:"version_above,omitempty" form:"version_above"` // Strictly newer than
	VersionBelow string `json:"version_below,omitempty" form:"version_below"` // Strictly older than
	Keyword      string `json:"keyword,omitempty" form:"keyword"`             // Word of the summary
	Tool         string `json:"tool,omitempty" form:"tool"`                   // Exported tool name
	ToolPath     string `json:"tool_path,omitempty" form:"tool_path"`         // Exported tool path ends with
	Offset       int    `json:"offset,omitempty" form:"offset"`
	Limit        int    `json:"limit,omitempty" form:"limit"` // 0 means no limit
}

// Validate checks the parts of the query that can be checked without an
// index and returns the first problem as a ValidationError.
func (q *ArtifactQuery) Validate() error {
	for field, value := range map[string]string{
		"version":       q.Version,
		"version_above": q.VersionAbove,
		"version_below": q.VersionBelow,
	} {
		if value == "" {
			continue
		}
		if _, err := semver.StrictNewVersion(value); err != nil {
			return errors.NewValidationError(field, "'"+value+"' is not a semantic version")
		}
	}
	if q.VersionRange != "" {
		if _, err := semver.NewConstraint(q.VersionRange); err != nil {
			return errors.NewValidationError("version_range", err.Error())
		}
	}
	if q.Pattern != "" {
		if _, err := regexp.Compile(q.Pattern); err != nil {
			return errors.NewValidationError("pattern", err.Error())
		}
	}
	if strings.ContainsAny(q.Keyword, " \t\n") {
		return errors.NewValidationError("keyword", "must be a single word")
	}
	if q.Offset < 0 {
		return errors.NewValidationError("offset", "cannot be negative")
	}
	if q.Limit < 0 {
		return errors.NewValidationError("limit", "cannot be negative")
	}
	return nil
}

// Hit is one artifact of a search result with the short name its identity resolved to.
type Hit struct {
	Artifact  model.Artifact `json:"artifact"`
	ShortName string         `json:"short_name"`
}

// SearchResult is one page of matching artifacts.
type SearchResult struct {
	Hits        []Hit    `json:"hits"`
	Total       int      `json:"total"`                 // matches before offset/limit
	Took        int64    `json:"took"`                  // microseconds
	QueryID     string   `json:"query_id"`              // unique UUID for this search query
	Suggestions []string `json:"suggestions,omitempty"` // close names when an id query matched nothing
}

// IndexReport describes one regeneration of a registry index.
type IndexReport struct {
	Indexed  int      `json:"indexed"`
	Skipped  int      `json:"skipped"`
	Problems []string `json:"problems,omitempty"`
}

// RegistryInfo summarizes a registry.
type RegistryInfo struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	Artifacts int    `json:"artifacts"`
	Loaded    bool   `json:"loaded"`
}

// Searcher defines operations for querying a registry
type Searcher interface {
	Search(query ArtifactQuery) (*SearchResult, error)
}

// RegistryManager manages the lifecycle of registries
type RegistryManager interface {
	AddRegistry(ctx context.Context, settings config.RegistrySettings) (*IndexReport, error)
	GetRegistry(name string) (RegistryInfo, error)
	ListRegistries() []RegistryInfo
	RemoveRegistry(name string) error
	Reindex(ctx context.Context, name string) (*IndexReport, error)
	Search(name string, query ArtifactQuery) (*SearchResult, error)
}

// RegistryManagerWithAsyncReindex extends RegistryManager with background reindexing
type RegistryManagerWithAsyncReindex interface {
	RegistryManager
	ReindexAsync(name string) (string, error) // Returns job ID
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(registryName string, status *model.JobStatus) []*model.Job
}
