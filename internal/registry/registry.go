// Package registry indexes a local artifact registry: a directory tree of
// YAML artifact manifests.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gcbaptista/go-artifact-index/index"
	apperrors "github.com/gcbaptista/go-artifact-index/internal/errors"
	"github.com/gcbaptista/go-artifact-index/internal/metrics"
	"github.com/gcbaptista/go-artifact-index/internal/persistence"
	"github.com/gcbaptista/go-artifact-index/internal/typoutil"
	"github.com/gcbaptista/go-artifact-index/model"
	"github.com/gcbaptista/go-artifact-index/services"
)

const maxSuggestions = 5

// ProgressFunc is told how many manifests were processed so far.
type ProgressFunc func(done, total int)

// Registry serves one directory of artifact manifests through an index that
// is rebuilt from the manifests or restored from its persisted form.
type Registry struct {
	name      string
	location  string
	indexPath string
	logger    *zap.Logger
	metrics   *metrics.Metrics

	mu     sync.RWMutex
	index  *Index
	loaded bool
}

// New creates a registry that reads manifests under location and persists
// its index at indexPath. Nothing is read until Open, Load or Regenerate.
func New(name, location, indexPath string, logger *zap.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		name:      name,
		location:  location,
		indexPath: indexPath,
		logger:    logger.With(zap.String("registry", name)),
		metrics:   m,
		index:     NewIndex(),
	}
}

// Name returns the registry name.
func (r *Registry) Name() string { return r.name }

// Location returns the manifest directory.
func (r *Registry) Location() string { return r.location }

// IndexPath returns where the index is persisted.
func (r *Registry) IndexPath() string { return r.indexPath }

// Count returns the number of indexed artifacts.
func (r *Registry) Count() int {
	return r.current().Len()
}

// Loaded reports whether the index was built or restored.
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Info summarizes the registry.
func (r *Registry) Info() services.RegistryInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return services.RegistryInfo{
		Name:      r.name,
		Location:  r.location,
		Artifacts: r.index.Len(),
		Loaded:    r.loaded,
	}
}

func (r *Registry) current() *Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index
}

func (r *Registry) install(idx *Index) {
	r.mu.Lock()
	r.index = idx
	r.loaded = true
	r.mu.Unlock()
}

// Open restores the persisted index, regenerating and saving it when there
// is none or it no longer matches the schema.
func (r *Registry) Open(ctx context.Context) (*services.IndexReport, error) {
	err := r.Load()
	if err == nil {
		return &services.IndexReport{Indexed: r.Count()}, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("Persisted index unusable, regenerating", zap.String("path", r.indexPath), zap.Error(err))
	}

	report, err := r.Regenerate(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := r.Save(); err != nil {
		return report, err
	}
	return report, nil
}

// Load replaces the index with the persisted one. On error the current
// index is kept.
func (r *Registry) Load() error {
	idx := NewIndex()
	if err := persistence.LoadJSON(r.indexPath, idx); err != nil {
		return err
	}
	for i, artifact := range idx.Serialize().Items {
		if artifact == nil {
			return fmt.Errorf("failed to load index %s: %w", r.indexPath,
				index.NewDeserializationError("", fmt.Sprintf("item %d is null", i)))
		}
	}
	r.install(idx)
	r.metrics.RecordIndexed(r.name, 0, idx.Len())
	r.logger.Info("Loaded index", zap.String("path", r.indexPath), zap.Int("artifacts", idx.Len()))
	return nil
}

// Save persists the current index.
func (r *Registry) Save() error {
	idx := r.current()
	if err := persistence.SaveJSON(r.indexPath, idx); err != nil {
		return fmt.Errorf("failed to save index of registry '%s': %w", r.name, err)
	}
	r.logger.Debug("Saved index", zap.String("path", r.indexPath))
	return nil
}

// Regenerate rebuilds the index from the manifests under the registry
// location. Manifests that cannot be indexed are skipped and reported; the
// new index replaces the current one only when the walk completes.
func (r *Registry) Regenerate(ctx context.Context, progress ProgressFunc) (*services.IndexReport, error) {
	start := time.Now()
	paths, err := findManifests(r.location)
	if err != nil {
		return nil, err
	}

	idx := NewIndex()
	report := &services.IndexReport{}
	declared := make(map[string]string) // id@version -> manifest

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i, len(paths))
		}

		artifact, err := readManifest(r.location, path)
		if err == nil {
			key := artifact.ID + "@" + artifact.Version
			if previous, dup := declared[key]; dup {
				err = apperrors.NewManifestError(artifact.Location, fmt.Sprintf("'%s' is already declared in '%s'", key, previous))
			} else {
				declared[key] = artifact.Location
			}
		}
		if err != nil {
			report.Skipped++
			report.Problems = append(report.Problems, err.Error())
			r.logger.Warn("Skipping manifest", zap.Error(err))
			continue
		}

		// manifests are validated, so a failure here leaves nothing to recover
		if err := idx.Insert(artifact, artifact); err != nil {
			return nil, fmt.Errorf("failed to index '%s': %w", artifact.Location, err)
		}
		report.Indexed++
	}
	if progress != nil {
		progress(len(paths), len(paths))
	}

	if err := idx.DoneInsertion(); err != nil {
		return nil, fmt.Errorf("failed to finish index of registry '%s': %w", r.name, err)
	}
	r.install(idx)
	r.metrics.RecordIndexed(r.name, report.Indexed, idx.Len())
	r.logger.Info("Regenerated index",
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Duration("took", time.Since(start)))
	return report, nil
}

// findManifests lists the YAML files under root in lexical order, skipping
// hidden directories.
func findManifests(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry location %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("registry location %s is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk registry location %s: %w", root, err)
	}
	return paths, nil
}

// readManifest decodes one manifest and checks the fields the index needs.
func readManifest(root, path string) (*model.Artifact, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from walking the registry location
	if err != nil {
		return nil, apperrors.NewManifestError(rel, err.Error())
	}

	var artifact model.Artifact
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&artifact); err != nil {
		return nil, apperrors.NewManifestError(rel, "invalid YAML: "+err.Error())
	}
	artifact.Location = rel
	artifact.ID = strings.TrimSpace(artifact.ID)
	artifact.Version = strings.TrimSpace(artifact.Version)

	if artifact.ID == "" {
		return nil, apperrors.NewManifestError(rel, "missing 'id'")
	}
	if strings.HasPrefix(artifact.ID, "/") || strings.HasSuffix(artifact.ID, "/") || strings.Contains(artifact.ID, "//") {
		return nil, apperrors.NewManifestError(rel, fmt.Sprintf("id '%s' has an empty segment", artifact.ID))
	}
	if artifact.Version == "" {
		return nil, apperrors.NewManifestError(rel, "missing 'version'")
	}
	if _, err := semver.StrictNewVersion(artifact.Version); err != nil {
		return nil, apperrors.NewManifestError(rel, fmt.Sprintf("version '%s' is not a semantic version", artifact.Version))
	}
	for tool, toolPath := range artifact.Exports.Tools {
		if strings.TrimSpace(tool) == "" || strings.TrimSpace(toolPath) == "" {
			return nil, apperrors.NewManifestError(rel, "exported tools need a name and a path")
		}
	}
	return &artifact, nil
}

// Search runs query on a fresh view of the index.
func (r *Registry) Search(query services.ArtifactQuery) (*services.SearchResult, error) {
	start := time.Now()
	if err := query.Validate(); err != nil {
		r.metrics.RecordQuery(r.name, metrics.OutcomeInvalid, time.Since(start))
		return nil, err
	}

	view := r.current().Where()
	view.ID.NameOrShortNameIs(query.ID).
		ID.StartsWith(query.IDPrefix).
		ID.EndsWith(query.IDSuffix).
		Version.Equals(query.Version).
		Version.RangeMatch(query.VersionRange).
		Version.GreaterThan(query.VersionAbove).
		Version.LessThan(query.VersionBelow).
		Summary.Contains(query.Keyword).
		Tools.Equals(query.Tool).
		ToolPath.EndsWith(query.ToolPath)
	if query.Pattern != "" {
		view.ID.Match(regexp.MustCompile(query.Pattern))
	}

	artifacts, err := view.Items()
	if err != nil {
		r.metrics.RecordQuery(r.name, metrics.OutcomeError, time.Since(start))
		if errors.Is(err, index.ErrValueCoercion) {
			return nil, apperrors.NewValidationError("", err.Error())
		}
		return nil, err
	}

	sortArtifacts(artifacts)
	total := len(artifacts)
	artifacts = page(artifacts, query.Offset, query.Limit)

	hits := make([]services.Hit, 0, len(artifacts))
	for _, artifact := range artifacts {
		short, ok := view.ID.ShortNameOf(artifact.ID)
		if !ok {
			short = artifact.ID
		}
		hits = append(hits, services.Hit{Artifact: *artifact, ShortName: short})
	}

	var suggestions []string
	if total == 0 && query.ID != "" {
		suggestions = typoutil.Suggest(query.ID, view.ID.KnownNames(), typoutil.MaxDistanceFor(query.ID), maxSuggestions)
	}

	took := time.Since(start)
	r.metrics.RecordQuery(r.name, metrics.OutcomeOK, took)
	return &services.SearchResult{
		Hits:        hits,
		Total:       total,
		Took:        took.Microseconds(),
		QueryID:     uuid.New().String(),
		Suggestions: suggestions,
	}, nil
}

// ShortNameOf returns the short name resolved for an artifact identity.
func (r *Registry) ShortNameOf(id string) (string, bool) {
	return r.current().Where().ID.ShortNameOf(id)
}

// sortArtifacts orders by identity, newest version first.
func sortArtifacts(artifacts []*model.Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		a, b := artifacts[i], artifacts[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		va, errA := semver.StrictNewVersion(a.Version)
		vb, errB := semver.StrictNewVersion(b.Version)
		if errA != nil || errB != nil {
			return a.Version > b.Version
		}
		return va.GreaterThan(vb)
	})
}

func page(artifacts []*model.Artifact, offset, limit int) []*model.Artifact {
	if offset >= len(artifacts) {
		return nil
	}
	artifacts = artifacts[offset:]
	if limit > 0 && limit < len(artifacts) {
		artifacts = artifacts[:limit]
	}
	return artifacts
}
