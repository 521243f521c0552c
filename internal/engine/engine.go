package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/gcbaptista/go-artifact-index/config"
	"github.com/gcbaptista/go-artifact-index/internal/jobs"
	"github.com/gcbaptista/go-artifact-index/internal/metrics"
	"github.com/gcbaptista/go-artifact-index/internal/registry"
	"github.com/gcbaptista/go-artifact-index/services"
)

const (
	dataDirPerm  = 0755
	maxJobs      = 2
	registryFile = "registry.json"
	indexFile    = "index.json"
)

// Engine manages multiple artifact registries.
// It implements the services.RegistryManager interface.
type Engine struct {
	mu         sync.RWMutex
	registries map[string]*registry.Registry
	dataDir    string
	logger     *zap.Logger
	metrics    *metrics.Metrics
	jobManager *jobs.Manager
}

var _ services.RegistryManagerWithAsyncReindex = (*Engine)(nil)
var _ services.JobManager = (*Engine)(nil)

// NewEngine creates the engine, restores the registries persisted under the
// data directory and adds the configured ones that are not known yet.
// Registries that fail to open are logged and skipped.
func NewEngine(ctx context.Context, settings *config.Settings, logger *zap.Logger, m *metrics.Metrics) *Engine {
	eng := &Engine{
		registries: make(map[string]*registry.Registry),
		dataDir:    settings.DataDir,
		logger:     logger.Named("engine"),
		metrics:    m,
		jobManager: jobs.NewManager(maxJobs, logger, m),
	}
	eng.jobManager.Start()

	if err := os.MkdirAll(eng.dataDir, dataDirPerm); err != nil {
		eng.logger.Warn("Could not create data directory, persistence may fail",
			zap.String("data_dir", eng.dataDir), zap.Error(err))
	}
	eng.loadRegistriesFromDisk(ctx)

	for _, rs := range settings.Registries {
		if _, err := eng.GetRegistry(rs.Name); err == nil {
			continue
		}
		if _, err := eng.AddRegistry(ctx, rs); err != nil {
			eng.logger.Warn("Failed to add configured registry", zap.String("registry", rs.Name), zap.Error(err))
		}
	}
	return eng
}

// Close stops background jobs.
func (e *Engine) Close() {
	e.jobManager.Stop()
}

func (e *Engine) registryDir(name string) string {
	return filepath.Join(e.dataDir, name)
}

func (e *Engine) newRegistry(rs config.RegistrySettings) *registry.Registry {
	return registry.New(rs.Name, rs.Location, filepath.Join(e.registryDir(rs.Name), indexFile), e.logger, e.metrics)
}

func (e *Engine) lookup(name string) (*registry.Registry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.registries[name]
	return r, ok
}

// ListRegistries returns every registry sorted by name.
func (e *Engine) ListRegistries() []services.RegistryInfo {
	e.mu.RLock()
	infos := make([]services.RegistryInfo, 0, len(e.registries))
	for _, r := range e.registries {
		infos = append(infos, r.Info())
	}
	e.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}
