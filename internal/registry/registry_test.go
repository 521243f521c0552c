package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-artifact-index/index"
	apperrors "github.com/gcbaptista/go-artifact-index/internal/errors"
	"github.com/gcbaptista/go-artifact-index/internal/metrics"
	testutil "github.com/gcbaptista/go-artifact-index/internal/testing"
	"github.com/gcbaptista/go-artifact-index/model"
	"github.com/gcbaptista/go-artifact-index/services"
)

func newTestRegistry(t *testing.T, location string) *Registry {
	t.Helper()
	m, _ := metrics.NewForTesting()
	return New("main", location, filepath.Join(t.TempDir(), "main", "index.json"), zap.NewNop(), m)
}

func openSample(t *testing.T) *Registry {
	t.Helper()
	r := newTestRegistry(t, testutil.CreateSampleRegistry(t))
	report, err := r.Regenerate(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 5, report.Indexed)
	return r
}

func hitIDs(result *services.SearchResult) []string {
	ids := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.Artifact.ID + "@" + hit.Artifact.Version
	}
	return ids
}

func TestSearch(t *testing.T) {
	r := openSample(t)

	tests := []struct {
		name  string
		query services.ArtifactQuery
		want  []string
	}{
		{
			name:  "empty query returns everything",
			query: services.ArtifactQuery{},
			want: []string{
				"kitware/cmake@3.27.0-rc.1",
				"microsoft/compilers/arm-gcc@10.3.1",
				"microsoft/compilers/arm-gcc@9.2.1",
				"microsoft/tools/cmake@3.24.0",
				"tools/ninja@1.11.1",
			},
		},
		{
			name:  "short name",
			query: services.ArtifactQuery{ID: "arm-gcc"},
			want:  []string{"microsoft/compilers/arm-gcc@10.3.1", "microsoft/compilers/arm-gcc@9.2.1"},
		},
		{
			name:  "short name of a colliding identity",
			query: services.ArtifactQuery{ID: "tools/cmake"},
			want:  []string{"microsoft/tools/cmake@3.24.0"},
		},
		{
			name:  "ambiguous trailing name matches nothing",
			query: services.ArtifactQuery{ID: "cmake"},
			want:  []string{},
		},
		{
			name:  "full identity",
			query: services.ArtifactQuery{ID: "microsoft/tools/cmake"},
			want:  []string{"microsoft/tools/cmake@3.24.0"},
		},
		{
			name:  "version range excludes prereleases",
			query: services.ArtifactQuery{VersionRange: ">=3.0.0 <4.0.0"},
			want:  []string{"microsoft/tools/cmake@3.24.0"},
		},
		{
			name:  "version above",
			query: services.ArtifactQuery{ID: "arm-gcc", VersionAbove: "9.2.1"},
			want:  []string{"microsoft/compilers/arm-gcc@10.3.1"},
		},
		{
			name:  "version below",
			query: services.ArtifactQuery{VersionBelow: "3.0.0"},
			want:  []string{"tools/ninja@1.11.1"},
		},
		{
			name:  "exact version",
			query: services.ArtifactQuery{Version: "9.2.1"},
			want:  []string{"microsoft/compilers/arm-gcc@9.2.1"},
		},
		{
			name:  "keyword",
			query: services.ArtifactQuery{Keyword: "build"},
			want:  []string{"microsoft/tools/cmake@3.24.0", "tools/ninja@1.11.1"},
		},
		{
			name:  "tool",
			query: services.ArtifactQuery{Tool: "gdb"},
			want:  []string{"microsoft/compilers/arm-gcc@10.3.1"},
		},
		{
			name:  "tool path suffix",
			query: services.ArtifactQuery{ToolPath: "arm-none-eabi-gdb"},
			want:  []string{"microsoft/compilers/arm-gcc@10.3.1"},
		},
		{
			name:  "tool path",
			query: services.ArtifactQuery{ToolPath: "bin/cmake"},
			want:  []string{"microsoft/tools/cmake@3.24.0"},
		},
		{
			name:  "tool and unrelated tool path",
			query: services.ArtifactQuery{Tool: "ninja", ToolPath: "bin/cmake"},
			want:  []string{},
		},
		{
			name:  "prefix and suffix",
			query: services.ArtifactQuery{IDPrefix: "microsoft/", IDSuffix: "cmake"},
			want:  []string{"microsoft/tools/cmake@3.24.0"},
		},
		{
			name:  "pattern",
			query: services.ArtifactQuery{Pattern: `^(kitware|tools)/`},
			want:  []string{"kitware/cmake@3.27.0-rc.1", "tools/ninja@1.11.1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Search(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hitIDs(result))
			assert.Equal(t, len(tt.want), result.Total)
			assert.NotEmpty(t, result.QueryID)
		})
	}
}

func TestSearchShortNames(t *testing.T) {
	r := openSample(t)

	result, err := r.Search(services.ArtifactQuery{})
	require.NoError(t, err)

	shortNames := make(map[string]string)
	for _, hit := range result.Hits {
		shortNames[hit.Artifact.ID] = hit.ShortName
	}
	assert.Equal(t, map[string]string{
		"kitware/cmake":               "kitware/cmake",
		"microsoft/compilers/arm-gcc": "arm-gcc",
		"microsoft/tools/cmake":       "tools/cmake",
		"tools/ninja":                 "ninja",
	}, shortNames)

	short, ok := r.ShortNameOf("tools/ninja")
	require.True(t, ok)
	assert.Equal(t, "ninja", short)
}

func TestSearchSuggestions(t *testing.T) {
	r := openSample(t)

	tests := []struct {
		id   string
		want []string
	}{
		{"ninjaa", []string{"ninja"}},
		{"tools/cmaek", []string{"tools/cmake"}},
		{"Ninja", []string{"ninja"}},
		{"Tools/CMake", []string{"tools/cmake"}},
		{"zlib", nil},
		{"ninja", nil},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			result, err := r.Search(services.ArtifactQuery{ID: tt.id})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Suggestions)
			if tt.want != nil {
				// names are case sensitive, so a suggestion is only made when nothing matched
				assert.Zero(t, result.Total)
			}
		})
	}
}

func TestSearchPaging(t *testing.T) {
	r := openSample(t)

	result, err := r.Search(services.ArtifactQuery{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, []string{"microsoft/compilers/arm-gcc@10.3.1", "microsoft/compilers/arm-gcc@9.2.1"}, hitIDs(result))

	result, err = r.Search(services.ArtifactQuery{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Empty(t, result.Hits)
}

func TestSearchRejectsInvalidQueries(t *testing.T) {
	r := openSample(t)

	for _, query := range []services.ArtifactQuery{
		{VersionRange: "abc"},
		{Version: "latest"},
		{VersionAbove: "1.x"},
		{Pattern: "("},
		{Keyword: "two words"},
		{Limit: -1},
	} {
		_, err := r.Search(query)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "%+v", query)
	}
}

func TestRegenerateSkipsBadManifests(t *testing.T) {
	dir := testutil.CreateSampleRegistry(t)
	testutil.WriteFile(t, dir, "bad/no-version.yaml", "id: bad/no-version\n")
	testutil.WriteFile(t, dir, "bad/latest.yaml", "id: bad/latest\nversion: latest\n")
	testutil.WriteFile(t, dir, "bad/broken.yml", "id: [unclosed\n")
	testutil.WriteFile(t, dir, "bad/empty-segment.yaml", "id: bad//x\nversion: 1.0.0\n")
	testutil.WriteFile(t, dir, "copy/ninja.yaml", "id: tools/ninja\nversion: 1.11.1\n")
	testutil.WriteFile(t, dir, ".cache/ignored.yaml", "id: hidden\nversion: 1.0.0\n")
	testutil.WriteFile(t, dir, "README.md", "# not a manifest\n")

	r := newTestRegistry(t, dir)
	report, err := r.Regenerate(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Indexed)
	assert.Equal(t, 5, report.Skipped)
	assert.Len(t, report.Problems, 5)
	assert.Equal(t, 5, r.Count())
	assert.True(t, r.Loaded())
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "org/tool.yaml", `
id: org/tool
version: 1.2.3
summary: A tool
description: Longer text
exports:
  tools:
    tool: bin/tool
install:
  unzip: https://example.com/tool.zip
`)

	artifact, err := readManifest(dir, filepath.Join(dir, "org", "tool.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &model.Artifact{
		ID:          "org/tool",
		Version:     "1.2.3",
		Summary:     "A tool",
		Description: "Longer text",
		Exports:     model.Exports{Tools: map[string]string{"tool": "bin/tool"}},
		Location:    "org/tool.yaml",
	}, artifact)

	testutil.WriteFile(t, dir, "org/no-id.yaml", "version: 1.0.0\n")
	_, err = readManifest(dir, filepath.Join(dir, "org", "no-id.yaml"))
	assert.ErrorIs(t, err, apperrors.ErrManifestInvalid)
}

func TestRegenerateReportsProgress(t *testing.T) {
	r := newTestRegistry(t, testutil.CreateSampleRegistry(t))

	var calls [][2]int
	_, err := r.Regenerate(context.Background(), func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	require.NoError(t, err)
	require.NotEmpty(t, calls)
	assert.Equal(t, [2]int{5, 5}, calls[len(calls)-1])
}

func TestRegenerateFailures(t *testing.T) {
	r := newTestRegistry(t, filepath.Join(t.TempDir(), "absent"))
	_, err := r.Regenerate(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, r.Loaded())

	sample := openSample(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sample.Regenerate(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, sample.Count(), "the previous index is kept")
}

func TestSaveAndLoad(t *testing.T) {
	r := openSample(t)
	require.NoError(t, r.Save())

	m, _ := metrics.NewForTesting()
	restored := New("main", r.Location(), r.IndexPath(), zap.NewNop(), m)
	require.NoError(t, restored.Load())
	assert.Equal(t, 5, restored.Count())

	for _, query := range []services.ArtifactQuery{
		{ID: "arm-gcc"},
		{VersionRange: "^3"},
		{Keyword: "Toolchain"},
		{Tool: "cmake"},
	} {
		want, err := r.Search(query)
		require.NoError(t, err)
		got, err := restored.Search(query)
		require.NoError(t, err)
		assert.Equal(t, hitIDs(want), hitIDs(got), "%+v", query)
	}
}

func TestOpen(t *testing.T) {
	dir := testutil.CreateSampleRegistry(t)
	r := newTestRegistry(t, dir)

	report, err := r.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Indexed)
	_, err = os.Stat(r.IndexPath())
	require.NoError(t, err, "the regenerated index is saved")

	// a second open uses the persisted index, not the manifests
	testutil.WriteManifest(t, dir, "late/arrival.yaml", model.Artifact{ID: "late/arrival", Version: "1.0.0"})
	m, _ := metrics.NewForTesting()
	again := New("main", dir, r.IndexPath(), zap.NewNop(), m)
	report, err = again.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Indexed)
}

func TestOpenRegeneratesCorruptIndex(t *testing.T) {
	dir := testutil.CreateSampleRegistry(t)
	r := newTestRegistry(t, dir)
	testutil.WriteFile(t, filepath.Dir(r.IndexPath()), "index.json", `{"items": [], "indexes": {}}`)

	report, err := r.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Indexed)
	assert.Equal(t, 5, r.Count())
}

func TestLoadRejectsNullItems(t *testing.T) {
	r := openSample(t)
	testutil.WriteFile(t, filepath.Dir(r.IndexPath()), "index.json",
		`{"items": [null], "indexes": {"id": {"keys": {}}, "version": {"keys": {}}, "summary": {"keys": {}}, "tools": {"keys": {}}, "tools.path": {"keys": {}}}}`)

	err := r.Load()
	assert.ErrorIs(t, err, index.ErrDeserialization)
	assert.Equal(t, 5, r.Count(), "the current index is kept")

	result, err := r.Search(services.ArtifactQuery{})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
}

func TestOpenRegeneratesIndexWithNullItems(t *testing.T) {
	dir := testutil.CreateSampleRegistry(t)
	r := newTestRegistry(t, dir)
	testutil.WriteFile(t, filepath.Dir(r.IndexPath()), "index.json",
		`{"items": [null], "indexes": {"id": {"keys": {}}, "version": {"keys": {}}, "summary": {"keys": {}}, "tools": {"keys": {}}, "tools.path": {"keys": {}}}}`)

	report, err := r.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Indexed)

	result, err := r.Search(services.ArtifactQuery{})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 5)
}
