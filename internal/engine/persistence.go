package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gcbaptista/go-artifact-index/config"
	"github.com/gcbaptista/go-artifact-index/internal/persistence"
)

// loadRegistriesFromDisk restores every registry whose declaration is found
// under the data directory.
func (e *Engine) loadRegistriesFromDisk(ctx context.Context) {
	e.logger.Info("Loading registries from disk", zap.String("data_dir", e.dataDir))

	items, err := os.ReadDir(e.dataDir)
	if err != nil {
		e.logger.Warn("Failed to read data directory, no registries loaded", zap.String("data_dir", e.dataDir), zap.Error(err))
		return
	}

	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		name := item.Name()
		declarationPath := filepath.Join(e.registryDir(name), registryFile)

		var rs config.RegistrySettings
		if err := persistence.LoadJSON(declarationPath, &rs); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				e.logger.Warn("Failed to load registry declaration, skipping", zap.String("path", declarationPath), zap.Error(err))
			}
			continue
		}

		// the directory name is authoritative
		if rs.Name != name {
			e.logger.Warn("Registry name does not match its directory, skipping",
				zap.String("declared", rs.Name), zap.String("directory", name))
			continue
		}

		r := e.newRegistry(rs)
		if _, err := r.Open(ctx); err != nil {
			e.logger.Warn("Failed to open registry, skipping", zap.String("registry", name), zap.Error(err))
			continue
		}

		e.mu.Lock()
		e.registries[name] = r
		e.mu.Unlock()
		e.logger.Info("Loaded registry", zap.String("registry", name), zap.Int("artifacts", r.Count()))
	}
}

// saveDeclaration persists what is needed to restore a registry at startup.
func (e *Engine) saveDeclaration(rs config.RegistrySettings) error {
	path := filepath.Join(e.registryDir(rs.Name), registryFile)
	if err := persistence.SaveJSON(path, rs); err != nil {
		return fmt.Errorf("failed to save declaration of registry '%s': %w", rs.Name, err)
	}
	return nil
}
