package index

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

func semverCodec() codec[*semver.Version] {
	return codec[*semver.Version]{
		// build metadata does not affect precedence but still tells
		// versions apart
		compare: func(a, b *semver.Version) int {
			if c := a.Compare(b); c != 0 {
				return c
			}
			return strings.Compare(a.Metadata(), b.Metadata())
		},
		precedence: func(a, b *semver.Version) int {
			return a.Compare(b)
		},
		coerce: semver.StrictNewVersion,
		format: func(v *semver.Version) string {
			return v.String()
		},
		// version fragments are not meaningful words
		words: false,
	}
}

// SemverKey is a key over semantic versions, ordered by version precedence.
// Versions that differ only in build metadata are distinct values, but
// GreaterThan and LessThan treat them as equal.
// Values that are not valid semantic versions fail with a ValueCoercionError.
// It has no words, so Contains never matches.
type SemverKey[C, S any] struct {
	*Key[C, S, *semver.Version]
}

// NewSemverKey declares a semantic-version key on schema.
func NewSemverKey[C, T, S any](schema *Schema[C, T], owner S, accessor Accessor[C], names ...string) *SemverKey[C, S] {
	k := &SemverKey[C, S]{Key: newKey(schema.sel, schema.register, owner, rootAccessor(accessor), semverCodec(), names)}
	schema.register(k)
	return k
}

// RangeMatch keeps the records whose version satisfies the range expression,
// for example ">=1.0.0 <2.0.0" or "^1.2". Scans like Match.
func (k *SemverKey[C, S]) RangeMatch(expression string) S {
	if expression == "" || k.sel.failed() {
		return k.owner
	}
	constraint, err := semver.NewConstraint(expression)
	if err != nil {
		k.sel.fail(NewValueCoercionError(k.identity, expression, err))
		return k.owner
	}
	k.scan(constraint.Check)
	return k.owner
}
