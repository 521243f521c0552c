package index

import (
	"maps"
	"slices"
	"strings"

	"github.com/google/btree"
)

const identitySeparator = "/"

// IdentityKey is a string key over slash-separated identities such as
// "microsoft/compilers/arm-gcc". Once insertion is done every identity gets
// the shortest trailing run of segments that no other identity shares, so
// records can be looked up by that short name as well.
type IdentityKey[C, S any] struct {
	*StringKey[C, S]

	shortNames *btree.BTreeG[posting[string]]
	byIdentity map[string]string
}

// NewIdentityKey declares an identity key on schema.
func NewIdentityKey[C, T, S any](schema *Schema[C, T], owner S, accessor Accessor[C], names ...string) *IdentityKey[C, S] {
	k := &IdentityKey[C, S]{
		StringKey:  &StringKey[C, S]{Key: newKey(schema.sel, schema.register, owner, rootAccessor(accessor), stringCodec(), names)},
		shortNames: newPostings(compareStrings),
		byIdentity: make(map[string]string),
	}
	schema.register(k)
	return k
}

// RequireUnique makes insertion fail with a DuplicateIdentityError when an
// identity is already held by another record.
func (k *IdentityKey[C, S]) RequireUnique() *IdentityKey[C, S] {
	k.unique = true
	return k
}

func (k *IdentityKey[C, S]) doneInsertion() error {
	shortNames, byIdentity, err := resolveShortNames(k.values)
	if err != nil {
		return err
	}
	k.shortNames, k.byIdentity = shortNames, byIdentity
	return nil
}

func (k *IdentityKey[C, S]) stage(content KeyContent, records int) (func(), error) {
	values, words, err := k.decode(content, records)
	if err != nil {
		return nil, err
	}
	shortNames, byIdentity, err := resolveShortNames(values)
	if err != nil {
		return nil, NewDeserializationError(k.identity, err.Error())
	}
	return func() {
		k.values, k.words = values, words
		k.shortNames, k.byIdentity = shortNames, byIdentity
	}, nil
}

func (k *IdentityKey[C, S]) cloneFrom(src node[C]) {
	k.Key.cloneFrom(src)
	from := src.(*IdentityKey[C, S])
	k.shortNames = from.shortNames.Clone()
	k.byIdentity = maps.Clone(from.byIdentity)
}

// NameOrShortNameIs keeps the records whose identity has name as its short
// name, falling back to an exact match on the full identity.
func (k *IdentityKey[C, S]) NameOrShortNameIs(name string) S {
	if name == "" || k.sel.failed() {
		return k.owner
	}
	if match, ok := k.shortNames.Get(posting[string]{key: name}); ok {
		k.sel.filter(match.ids)
		return k.owner
	}
	return k.Equals(name)
}

// ShortNameOf returns the short name resolved for identity.
func (k *IdentityKey[C, S]) ShortNameOf(identity string) (string, bool) {
	short, ok := k.byIdentity[identity]
	return short, ok
}

// KnownNames lists every short name and every full identity, without
// duplicates and in collation order.
func (k *IdentityKey[C, S]) KnownNames() []string {
	seen := make(map[string]struct{}, k.shortNames.Len()+k.values.Len())
	names := make([]string, 0, k.shortNames.Len()+k.values.Len())
	add := func(p posting[string]) bool {
		if _, dup := seen[p.key]; !dup {
			seen[p.key] = struct{}{}
			names = append(names, p.key)
		}
		return true
	}
	k.shortNames.Ascend(add)
	k.values.Ascend(add)
	slices.SortFunc(names, compareStrings)
	return names
}

type identityCandidate struct {
	identity string
	segments int
	ids      idSet
}

// resolveShortNames groups identities by their last n segments, for n = 1, 2, ...
// until every group has a single member. Identities shorter than n keep their
// full form, so a group whose members are all exhausted holds duplicates.
func resolveShortNames(values *btree.BTreeG[posting[string]]) (*btree.BTreeG[posting[string]], map[string]string, error) {
	shortNames := newPostings(compareStrings)
	byIdentity := make(map[string]string)

	var order []string
	groups := make(map[string][]identityCandidate)
	push := func(name string, c identityCandidate) {
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], c)
	}

	values.Ascend(func(p posting[string]) bool {
		c := identityCandidate{
			identity: p.key,
			segments: strings.Count(p.key, identitySeparator) + 1,
			ids:      p.ids,
		}
		push(trailingSegments(p.key, 1), c)
		return true
	})

	for n := 2; len(order) > 0; n++ {
		current, members := order, groups
		order, groups = nil, make(map[string][]identityCandidate)

		for _, name := range current {
			group := members[name]
			if len(group) == 1 {
				shortNames.ReplaceOrInsert(posting[string]{key: name, ids: group[0].ids})
				byIdentity[group[0].identity] = name
				continue
			}
			exhausted := true
			for _, c := range group {
				if c.segments >= n {
					exhausted = false
					break
				}
			}
			if exhausted {
				return nil, nil, NewDuplicateIdentityError(name)
			}
			for _, c := range group {
				push(trailingSegments(c.identity, n), c)
			}
		}
	}
	return shortNames, byIdentity, nil
}

func trailingSegments(identity string, n int) string {
	segments := strings.Split(identity, identitySeparator)
	if n >= len(segments) {
		return identity
	}
	return strings.Join(segments[len(segments)-n:], identitySeparator)
}
