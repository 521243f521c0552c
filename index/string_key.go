package index

import (
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collators keep scratch buffers, so each comparison borrows its own.
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.Und)
	},
}

// compareStrings orders non-empty strings by the root locale collation,
// breaking collation ties by byte order so distinct strings never collide.
// Empty strings order before everything else.
func compareStrings(a, b string) int {
	if a != "" && b != "" {
		c := collators.Get().(*collate.Collator)
		result := c.CompareString(a, b)
		collators.Put(c)
		if result != 0 {
			return result
		}
		return strings.Compare(a, b)
	}
	if a != "" {
		return 1
	}
	if b != "" {
		return -1
	}
	return 0
}

func stringCodec() codec[string] {
	return codec[string]{
		compare: compareStrings,
		coerce: func(raw string) (string, error) {
			return raw, nil
		},
		format: func(v string) string {
			return v
		},
		words: true,
	}
}

// StringKey is a key over string values, ordered by locale-aware comparison
// and tokenized for word search.
type StringKey[C, S any] struct {
	*Key[C, S, string]
}

// NewStringKey declares a string key on schema. The first name is canonical;
// the rest are aliases accepted when loading persisted content.
func NewStringKey[C, T, S any](schema *Schema[C, T], owner S, accessor Accessor[C], names ...string) *StringKey[C, S] {
	k := &StringKey[C, S]{Key: newKey(schema.sel, schema.register, owner, rootAccessor(accessor), stringCodec(), names)}
	schema.register(k)
	return k
}
