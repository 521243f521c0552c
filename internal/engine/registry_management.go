package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gcbaptista/go-artifact-index/config"
	"github.com/gcbaptista/go-artifact-index/internal/errors"
	"github.com/gcbaptista/go-artifact-index/services"
)

// AddRegistry declares a registry, builds its index and persists both.
func (e *Engine) AddRegistry(ctx context.Context, rs config.RegistrySettings) (*services.IndexReport, error) {
	if problems := rs.Validate(0); len(problems) > 0 {
		return nil, errors.NewValidationError("", problems[0])
	}
	location, err := filepath.Abs(rs.Location)
	if err != nil {
		return nil, errors.NewValidationError("location", err.Error())
	}
	rs.Location = location

	if _, exists := e.lookup(rs.Name); exists {
		return nil, errors.NewRegistryAlreadyExistsError(rs.Name)
	}

	r := e.newRegistry(rs)
	report, err := r.Regenerate(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to index registry '%s': %w", rs.Name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// double-check, the regeneration ran unlocked
	if _, exists := e.registries[rs.Name]; exists {
		return nil, errors.NewRegistryAlreadyExistsError(rs.Name)
	}
	if err := e.saveDeclaration(rs); err != nil {
		return nil, err
	}
	if err := r.Save(); err != nil {
		return nil, err
	}

	e.registries[rs.Name] = r
	e.logger.Info("Registry added", zap.String("registry", rs.Name), zap.String("location", rs.Location))
	return report, nil
}

// GetRegistry returns the summary of a registry.
func (e *Engine) GetRegistry(name string) (services.RegistryInfo, error) {
	r, exists := e.lookup(name)
	if !exists {
		return services.RegistryInfo{}, errors.NewRegistryNotFoundError(name)
	}
	return r.Info(), nil
}

// RemoveRegistry forgets a registry and deletes its persisted data. The
// manifests are left untouched.
func (e *Engine) RemoveRegistry(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.registries[name]; !exists {
		return errors.NewRegistryNotFoundError(name)
	}
	delete(e.registries, name)
	e.metrics.Forget(name)

	dir := e.registryDir(name)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove registry directory %s: %w", dir, err)
	}

	e.logger.Info("Registry removed", zap.String("registry", name))
	return nil
}

// Reindex regenerates a registry index from its manifests and persists it.
func (e *Engine) Reindex(ctx context.Context, name string) (*services.IndexReport, error) {
	r, exists := e.lookup(name)
	if !exists {
		return nil, errors.NewRegistryNotFoundError(name)
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

// Search runs a query against one registry.
func (e *Engine) Search(name string, query services.ArtifactQuery) (*services.SearchResult, error) {
	r, exists := e.lookup(name)
	if !exists {
		return nil, errors.NewRegistryNotFoundError(name)
	}
	return r.Search(query)
}
