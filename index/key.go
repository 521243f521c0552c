package index

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/btree"

	"github.com/gcbaptista/go-artifact-index/internal/tokenizer"
)

const btreeDegree = 32

// Accessor extracts the values of one key from a record.
type Accessor[C any] func(content C) Values

// NestedAccessor extracts the values of a nested key from a record, given one
// of the values the parent key produced for that record.
type NestedAccessor[C any] func(content C, parent string) Values

// posting is one entry of a sorted map: a key value and the records holding it.
type posting[V any] struct {
	key V
	ids idSet
}

func newPostings[V any](compare func(a, b V) int) *btree.BTreeG[posting[V]] {
	return btree.NewG(btreeDegree, func(a, b posting[V]) bool {
		return compare(a.key, b.key) < 0
	})
}

// codec is what distinguishes the key flavours: how values are parsed,
// ordered and printed, and whether they are split into words.
type codec[V any] struct {
	compare    func(a, b V) int
	precedence func(a, b V) int // range order; nil means compare
	coerce     func(raw string) (V, error)
	format     func(v V) string
	words      bool
}

func (c codec[V]) rank(a, b V) int {
	if c.precedence != nil {
		return c.precedence(a, b)
	}
	return c.compare(a, b)
}

// node is the type-erased key the schema and index drive.
type node[C any] interface {
	Identity() string
	Names() []string
	isNested() bool
	feed(content C, id uint32, parent string) error
	doneInsertion() error
	serialize() KeyContent
	stage(content KeyContent, records int) (commit func(), err error)
	cloneFrom(src node[C])
}

// Key is one named, searchable facet of the indexed records. It keeps an
// exact-match sorted map from value to record ids and, for keys that are
// tokenized, a sorted map from word to record ids.
//
// Every query narrows the selection of the schema that owns the key and
// returns that schema, so calls chain.
type Key[C, S, V any] struct {
	identity string
	names    []string
	extract  NestedAccessor[C]
	nested   bool
	children []node[C]
	unique   bool

	codec  codec[V]
	values *btree.BTreeG[posting[V]]
	words  *btree.BTreeG[posting[string]]

	sel      *selection
	owner    S
	register func(node[C])
}

func newKey[C, S, V any](sel *selection, register func(node[C]), owner S, extract NestedAccessor[C], c codec[V], names []string) *Key[C, S, V] {
	if len(names) == 0 {
		panic("index: a key needs at least one name")
	}
	return &Key[C, S, V]{
		identity: names[0],
		names:    names,
		extract:  extract,
		codec:    c,
		values:   newPostings(c.compare),
		words:    newPostings(strings.Compare),
		sel:      sel,
		owner:    owner,
		register: register,
	}
}

func rootAccessor[C any](accessor Accessor[C]) NestedAccessor[C] {
	return func(content C, _ string) Values {
		return accessor(content)
	}
}

// Identity returns the canonical name of the key.
func (k *Key[C, S, V]) Identity() string {
	return k.identity
}

// Names returns the canonical name followed by the aliases accepted when
// loading persisted content.
func (k *Key[C, S, V]) Names() []string {
	return k.names
}

func (k *Key[C, S, V]) isNested() bool {
	return k.nested
}

func (k *Key[C, S, V]) base() *Key[C, S, V] {
	return k
}

func (k *Key[C, S, V]) coerce(raw string) (V, error) {
	v, err := k.codec.coerce(raw)
	if err != nil {
		return v, NewValueCoercionError(k.identity, raw, err)
	}
	return v, nil
}

// feed extracts this key's values from the record and indexes them.
func (k *Key[C, S, V]) feed(content C, id uint32, parent string) error {
	values := k.extract(content, parent)
	if values.IsNone() {
		return nil
	}
	for _, each := range values.Items() {
		if each == "" {
			continue
		}
		if err := k.addKey(each, id); err != nil {
			return err
		}
		if k.codec.words {
			k.addWords(each, id)
		}
		for _, child := range k.children {
			if err := child.feed(content, id, each); err != nil {
				return err
			}
		}
	}
	return nil
}

func (k *Key[C, S, V]) addKey(raw string, id uint32) error {
	v, err := k.coerce(raw)
	if err != nil {
		return err
	}
	if existing, ok := k.values.Get(posting[V]{key: v}); ok {
		if k.unique && !existing.ids.has(id) {
			return NewDuplicateIdentityError(k.codec.format(v))
		}
		existing.ids.add(id)
		return nil
	}
	k.values.ReplaceOrInsert(posting[V]{key: v, ids: newIDSet(id)})
	return nil
}

func (k *Key[C, S, V]) addWords(raw string, id uint32) {
	for _, word := range tokenizer.Phrases(raw) {
		if existing, ok := k.words.Get(posting[string]{key: word}); ok {
			existing.ids.add(id)
			continue
		}
		k.words.ReplaceOrInsert(posting[string]{key: word, ids: newIDSet(id)})
	}
}

func (k *Key[C, S, V]) doneInsertion() error {
	return nil
}

func (k *Key[C, S, V]) serialize() KeyContent {
	content := KeyContent{Keys: make(map[string][]uint32, k.values.Len())}
	k.values.Ascend(func(p posting[V]) bool {
		content.Keys[k.codec.format(p.key)] = p.ids.sorted()
		return true
	})
	if k.codec.words {
		content.Words = make(map[string][]uint32, k.words.Len())
		k.words.Ascend(func(p posting[string]) bool {
			content.Words[p.key] = p.ids.sorted()
			return true
		})
	}
	return content
}

// stage decodes persisted content into fresh maps without touching the
// key; commit installs them.
func (k *Key[C, S, V]) stage(content KeyContent, records int) (func(), error) {
	values, words, err := k.decode(content, records)
	if err != nil {
		return nil, err
	}
	return func() {
		k.values = values
		k.words = words
	}, nil
}

func (k *Key[C, S, V]) decode(content KeyContent, records int) (*btree.BTreeG[posting[V]], *btree.BTreeG[posting[string]], error) {
	values, err := k.decodeValues(content, records)
	if err != nil {
		return nil, nil, err
	}
	words := newPostings(strings.Compare)
	if k.codec.words {
		for word, ids := range content.Words {
			set, err := k.decodeIDs(ids, records)
			if err != nil {
				return nil, nil, err
			}
			words.ReplaceOrInsert(posting[string]{key: word, ids: set})
		}
	}
	return values, words, nil
}

func (k *Key[C, S, V]) decodeValues(content KeyContent, records int) (*btree.BTreeG[posting[V]], error) {
	values := newPostings(k.codec.compare)
	for raw, ids := range content.Keys {
		v, err := k.codec.coerce(raw)
		if err != nil {
			return nil, NewDeserializationError(k.identity, fmt.Sprintf("invalid value '%s': %v", raw, err))
		}
		set, err := k.decodeIDs(ids, records)
		if err != nil {
			return nil, err
		}
		if existing, ok := values.Get(posting[V]{key: v}); ok {
			existing.ids.addAll(set)
			continue
		}
		values.ReplaceOrInsert(posting[V]{key: v, ids: set})
	}
	return values, nil
}

func (k *Key[C, S, V]) decodeIDs(ids []uint32, records int) (idSet, error) {
	set := make(idSet, len(ids))
	for _, id := range ids {
		if int64(id) >= int64(records) {
			return nil, NewDeserializationError(k.identity, fmt.Sprintf("record id %d out of range (%d records)", id, records))
		}
		set.add(id)
	}
	return set, nil
}

func (k *Key[C, S, V]) cloneFrom(src node[C]) {
	from := src.(interface{ base() *Key[C, S, V] }).base()
	k.values = from.values.Clone()
	k.words = from.words.Clone()
}

// NestString declares a string key whose values are derived from each value
// of this key. It is indexed only through this key, but is queried,
// persisted and cloned like any other key of the schema.
func (k *Key[C, S, V]) NestString(accessor NestedAccessor[C], names ...string) *StringKey[C, S] {
	child := &StringKey[C, S]{Key: newKey(k.sel, k.register, k.owner, accessor, stringCodec(), names)}
	child.nested = true
	k.children = append(k.children, child)
	k.register(child)
	return child
}

// NestSemver declares a nested semantic-version key, see NestString.
func (k *Key[C, S, V]) NestSemver(accessor NestedAccessor[C], names ...string) *SemverKey[C, S] {
	child := &SemverKey[C, S]{Key: newKey(k.sel, k.register, k.owner, accessor, semverCodec(), names)}
	child.nested = true
	k.children = append(k.children, child)
	k.register(child)
	return child
}

// Equals keeps the records whose value is exactly value.
func (k *Key[C, S, V]) Equals(value string) S {
	if value == "" || k.sel.failed() {
		return k.owner
	}
	v, err := k.coerce(value)
	if err != nil {
		k.sel.fail(err)
		return k.owner
	}
	if match, ok := k.values.Get(posting[V]{key: v}); ok {
		k.sel.filter(match.ids)
	} else {
		k.sel.filter(nil)
	}
	return k.owner
}

// Contains keeps the records that have word among the words of their value.
// A word is any run of whole words from the value that has no space in it.
func (k *Key[C, S, V]) Contains(word string) S {
	if word == "" || k.sel.failed() {
		return k.owner
	}
	if match, ok := k.words.Get(posting[string]{key: word}); ok {
		k.sel.filter(match.ids)
	} else {
		k.sel.filter(nil)
	}
	return k.owner
}

// GreaterThan keeps the records whose value orders strictly after value.
func (k *Key[C, S, V]) GreaterThan(value string) S {
	if value == "" || k.sel.failed() {
		return k.owner
	}
	pivot, err := k.coerce(value)
	if err != nil {
		k.sel.fail(err)
		return k.owner
	}
	set := make(idSet)
	k.values.AscendGreaterOrEqual(posting[V]{key: pivot}, func(p posting[V]) bool {
		if k.codec.rank(p.key, pivot) > 0 {
			set.addAll(p.ids)
		}
		return true
	})
	k.sel.filter(set)
	return k.owner
}

// LessThan keeps the records whose value orders strictly before value.
func (k *Key[C, S, V]) LessThan(value string) S {
	if value == "" || k.sel.failed() {
		return k.owner
	}
	pivot, err := k.coerce(value)
	if err != nil {
		k.sel.fail(err)
		return k.owner
	}
	set := make(idSet)
	k.values.AscendLessThan(posting[V]{key: pivot}, func(p posting[V]) bool {
		if k.codec.rank(p.key, pivot) < 0 {
			set.addAll(p.ids)
		}
		return true
	})
	k.sel.filter(set)
	return k.owner
}

// Match keeps the records whose value matches re. This scans every value,
// looking only at records that are still selected.
func (k *Key[C, S, V]) Match(re *regexp.Regexp) S {
	if re == nil || k.sel.failed() {
		return k.owner
	}
	k.scan(func(v V) bool {
		return re.MatchString(k.codec.format(v))
	})
	return k.owner
}

// StartsWith keeps the records whose value starts with prefix. Scans like Match.
func (k *Key[C, S, V]) StartsWith(prefix string) S {
	if prefix == "" || k.sel.failed() {
		return k.owner
	}
	k.scan(func(v V) bool {
		return strings.HasPrefix(k.codec.format(v), prefix)
	})
	return k.owner
}

// EndsWith keeps the records whose value ends with suffix. Scans like Match.
func (k *Key[C, S, V]) EndsWith(suffix string) S {
	if suffix == "" || k.sel.failed() {
		return k.owner
	}
	k.scan(func(v V) bool {
		return strings.HasSuffix(k.codec.format(v), suffix)
	})
	return k.owner
}

func (k *Key[C, S, V]) scan(keep func(v V) bool) {
	set := make(idSet)
	k.values.Ascend(func(p posting[V]) bool {
		if !keep(p.key) {
			return true
		}
		for id := range p.ids {
			if k.sel.isSelected(id) {
				set.add(id)
			}
		}
		return true
	})
	k.sel.filter(set)
}
