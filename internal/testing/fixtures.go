// Package testing provides fixtures and helpers for testing the artifact index.
package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gcbaptista/go-artifact-index/model"
)

// SampleArtifacts is a small registry: two versions of an arm toolchain,
// two cmake distributions whose identities share a trailing segment, and
// a standalone ninja.
func SampleArtifacts() []model.Artifact {
	return []model.Artifact{
		{
			ID:      "microsoft/compilers/arm-gcc",
			Version: "10.3.1",
			Summary: "GNU Arm Embedded Toolchain",
			Exports: model.Exports{Tools: map[string]string{
				"gcc": "bin/arm-none-eabi-gcc",
				"gdb": "bin/arm-none-eabi-gdb",
			}},
		},
		{
			ID:      "microsoft/compilers/arm-gcc",
			Version: "9.2.1",
			Summary: "GNU Arm Embedded Toolchain",
			Exports: model.Exports{Tools: map[string]string{
				"gcc": "bin/arm-none-eabi-gcc",
			}},
		},
		{
			ID:      "microsoft/tools/cmake",
			Version: "3.24.0",
			Summary: "Cross-platform build system generator",
			Exports: model.Exports{Tools: map[string]string{
				"cmake": "bin/cmake",
			}},
		},
		{
			ID:          "kitware/cmake",
			Version:     "3.27.0-rc.1",
			Summary:     "CMake release candidate",
			Description: "Preview build of the next CMake release",
		},
		{
			ID:      "tools/ninja",
			Version: "1.11.1",
			Summary: "Small build system focused on speed",
			Exports: model.Exports{Tools: map[string]string{
				"ninja": "ninja",
			}},
		},
	}
}

// WriteManifest writes an artifact manifest at dir/rel.
func WriteManifest(t testing.TB, dir, rel string, artifact model.Artifact) {
	t.Helper()
	data, err := yaml.Marshal(artifact)
	require.NoError(t, err)
	WriteFile(t, dir, rel, string(data))
}

// WriteFile writes raw content at dir/rel, creating parent directories.
func WriteFile(t testing.TB, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// CreateSampleRegistry writes SampleArtifacts as manifests into a fresh
// temporary directory and returns it.
func CreateSampleRegistry(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	for _, artifact := range SampleArtifacts() {
		WriteManifest(t, dir, ManifestPath(artifact), artifact)
	}
	return dir
}

// ManifestPath is where CreateSampleRegistry puts an artifact's manifest.
func ManifestPath(artifact model.Artifact) string {
	return artifact.ID + "-" + artifact.Version + ".yaml"
}
