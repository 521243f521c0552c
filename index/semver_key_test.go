package index

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemverBuildMetadataKeepsValuesApart(t *testing.T) {
	idx := newPkgIndex(t,
		pkg{ID: "plus-a", Version: "1.0.0+a"},
		pkg{ID: "plus-b", Version: "1.0.0+b"},
		pkg{ID: "plain", Version: "1.0.0"},
	)

	assert.Equal(t, []string{"plus-b"}, items(t, idx.Where().Version.Equals("1.0.0+b")))
	assert.Equal(t, []string{"plain"}, items(t, idx.Where().Version.Equals("1.0.0")))
	assert.Equal(t, []string{"plus-a"}, items(t, idx.Where().Version.EndsWith("+a")))

	keys := idx.Serialize().Indexes["version"].Keys
	assert.Len(t, keys, 3)
	assert.Equal(t, []uint32{0}, keys["1.0.0+a"])
	assert.Equal(t, []uint32{1}, keys["1.0.0+b"])
	assert.Equal(t, []uint32{2}, keys["1.0.0"])
}

func TestSemverRangesIgnoreBuildMetadata(t *testing.T) {
	idx := newPkgIndex(t,
		pkg{ID: "plus-a", Version: "1.0.0+a"},
		pkg{ID: "plus-b", Version: "1.0.0+b"},
		pkg{ID: "plain", Version: "1.0.0"},
	)
	all := []string{"plus-a", "plus-b", "plain"}

	tests := []struct {
		name string
		view *pkgSchema
		want []string
	}{
		{"above equal precedence", idx.Where().Version.GreaterThan("1.0.0"), nil},
		{"above equal precedence with metadata", idx.Where().Version.GreaterThan("1.0.0+a"), nil},
		{"below equal precedence", idx.Where().Version.LessThan("1.0.0"), nil},
		{"below equal precedence with metadata", idx.Where().Version.LessThan("1.0.0+b"), nil},
		{"above a lower version", idx.Where().Version.GreaterThan("0.9.0"), all},
		{"below a higher version", idx.Where().Version.LessThan("1.0.1"), all},
		{"range", idx.Where().Version.RangeMatch("=1.0.0"), all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := items(t, tt.view)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

type dep struct {
	ID       string
	Requires map[string]string
}

type depSchema struct {
	*Schema[dep, string]
	ID              *IdentityKey[dep, *depSchema]
	Requires        *StringKey[dep, *depSchema]
	RequiredVersion *SemverKey[dep, *depSchema]
}

func newDepSchema(s *Schema[dep, string]) *depSchema {
	d := &depSchema{Schema: s}
	d.ID = NewIdentityKey(s, d, func(c dep) Values { return Scalar(c.ID) }, "id")
	d.Requires = NewStringKey(s, d, func(c dep) Values {
		if len(c.Requires) == 0 {
			return None()
		}
		names := make([]string, 0, len(c.Requires))
		for name := range c.Requires {
			names = append(names, name)
		}
		sort.Strings(names)
		return Sequence(names...)
	}, "requires")
	d.RequiredVersion = d.Requires.NestSemver(func(c dep, name string) Values {
		return Scalar(c.Requires[name])
	}, "requires.version")
	return d
}

func sampleDeps() []dep {
	return []dep{
		{ID: "tools/curl", Requires: map[string]string{"zlib": "1.2.13", "openssl": "3.0.0"}},
		{ID: "tools/git", Requires: map[string]string{"zlib": "1.3.0"}},
		{ID: "tools/ninja"},
	}
}

func newDepIndex(t *testing.T, records ...dep) *Index[dep, string, *depSchema] {
	t.Helper()
	idx := New(newDepSchema)
	for _, r := range records {
		require.NoError(t, idx.Insert(r, r.ID))
	}
	require.NoError(t, idx.DoneInsertion())
	return idx
}

func depItems(t *testing.T, s *depSchema) []string {
	t.Helper()
	got, err := s.Items()
	require.NoError(t, err)
	return got
}

func TestNestedSemverKey(t *testing.T) {
	idx := newDepIndex(t, sampleDeps()...)

	assert.Equal(t, []string{"id", "requires", "requires.version"}, idx.Where().KeyNames())

	assert.Equal(t, []string{"tools/git"}, depItems(t, idx.Where().RequiredVersion.RangeMatch(">=1.3.0 <2.0.0")))
	assert.Equal(t, []string{"tools/curl"}, depItems(t, idx.Where().RequiredVersion.LessThan("1.3.0")))
	assert.Equal(t, []string{"tools/curl"}, depItems(t, idx.Where().Requires.Equals("openssl").RequiredVersion.GreaterThan("2.0.0")))
	assert.ElementsMatch(t, []string{"tools/curl", "tools/git"}, depItems(t, idx.Where().RequiredVersion.GreaterThan("1.0.0")))
	assert.Empty(t, depItems(t, idx.Where().Requires.Equals("zlib").RequiredVersion.Equals("2.0.0")))

	_, err := idx.Where().RequiredVersion.Equals("one").Items()
	assert.ErrorIs(t, err, ErrValueCoercion)
}

func TestNestedSemverKeyRoundTrip(t *testing.T) {
	file := newDepIndex(t, sampleDeps()...).Serialize()

	nested := file.Indexes["requires.version"]
	assert.Nil(t, nested.Words)
	assert.Equal(t, map[string][]uint32{"1.2.13": {0}, "3.0.0": {0}, "1.3.0": {1}}, nested.Keys)

	restored := New(newDepSchema)
	require.NoError(t, restored.Deserialize(file))
	assert.Equal(t, []string{"tools/git"}, depItems(t, restored.Where().RequiredVersion.Equals("1.3.0")))
}

func TestNestedSemverKeyRejectsInvalidVersion(t *testing.T) {
	idx := New(newDepSchema)
	err := idx.Insert(dep{ID: "broken", Requires: map[string]string{"zlib": "latest"}}, "broken")

	var coercion *ValueCoercionError
	require.ErrorAs(t, err, &coercion)
	assert.Equal(t, "requires.version", coercion.Key)
	assert.Equal(t, "latest", coercion.Value)
}
