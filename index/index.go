// Package index implements an in-memory, multi-key inverted index.
//
// Records are inserted once, each with a searchable projection (the content)
// and the value returned by queries (the target). Every key declared by the
// schema extracts values from the content and maps them to record ids. Queries
// run on views obtained from Where: each view clones the key maps, narrows its
// own selection through chained key calls, and yields the selected targets.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Index owns the inserted records and the schema whose keys index them.
// C is the content type keys read, T the target type queries return, and S
// the concrete schema type, built by the factory given to New.
//
// Insertion and querying are separate phases: once DoneInsertion, Deserialize
// or Where has been called, Insert fails with ErrIndexSealed until Reset.
type Index[C, T, S any] struct {
	mu      sync.Mutex
	factory func(*Schema[C, T]) S
	schema  *Schema[C, T]
	keys    S
	sealed  bool
}

// New creates an empty index. The factory declares the keys on the schema it
// is given and returns the concrete schema; it is called again for each view,
// so it must declare the same keys in the same order every time.
func New[C, T, S any](factory func(*Schema[C, T]) S) *Index[C, T, S] {
	idx := &Index[C, T, S]{factory: factory}
	idx.schema, idx.keys = idx.build(nil)
	return idx
}

func (i *Index[C, T, S]) build(records []T) (*Schema[C, T], S) {
	schema := newSchema[C, T](records)
	keys := i.factory(schema)
	return schema, keys
}

// Reset drops every record and reopens the index for insertion.
func (i *Index[C, T, S]) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.schema, i.keys = i.build(nil)
	i.sealed = false
}

// Len returns the number of records in the index.
func (i *Index[C, T, S]) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.schema.records)
}

// Insert appends target as the next record and indexes content with every
// declared key. If a key fails, the record keeps its id but may be only
// partly indexed; callers that cannot accept that should Reset.
func (i *Index[C, T, S]) Insert(content C, target T) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.sealed {
		return ErrIndexSealed
	}

	id := uint32(len(i.schema.records))
	i.schema.records = append(i.schema.records, target)
	for _, n := range i.schema.nodes {
		if n.isNested() {
			continue
		}
		if err := n.feed(content, id, ""); err != nil {
			return fmt.Errorf("failed to index record %d: %w", id, err)
		}
	}
	return nil
}

// DoneInsertion lets keys post-process the complete set of records. It must
// be called once every record is inserted.
func (i *Index[C, T, S]) DoneInsertion() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, n := range i.schema.nodes {
		if err := n.doneInsertion(); err != nil {
			return fmt.Errorf("failed to finish key '%s': %w", n.Identity(), err)
		}
	}
	i.sealed = true
	return nil
}

// Where returns a fresh view of the index with nothing filtered yet. Views
// share the records but own their key maps and selection, so each may be
// narrowed independently and used from its own goroutine.
func (i *Index[C, T, S]) Where() S {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.sealed = true
	view, keys := i.build(i.schema.records)
	if len(view.nodes) != len(i.schema.nodes) {
		panic("index: schema factory declared a different set of keys")
	}
	for n, key := range view.nodes {
		key.cloneFrom(i.schema.nodes[n])
	}
	return keys
}

// Serialize returns the persisted form of the index.
func (i *Index[C, T, S]) Serialize() File[T] {
	i.mu.Lock()
	defer i.mu.Unlock()

	items := make([]T, len(i.schema.records))
	copy(items, i.schema.records)
	return File[T]{
		Items:   items,
		Indexes: i.schema.serialize(),
	}
}

// Deserialize replaces the index with the persisted content. Every declared
// key must be present under its name or one of its aliases. On error the
// index is left unchanged.
func (i *Index[C, T, S]) Deserialize(file File[T]) error {
	schema, keys := i.build(slices.Clone(file.Items))
	commit, err := schema.stage(file.Indexes, len(file.Items))
	if err != nil {
		return err
	}
	commit()

	i.mu.Lock()
	defer i.mu.Unlock()
	i.schema, i.keys = schema, keys
	i.sealed = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (i *Index[C, T, S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Serialize())
}

// UnmarshalJSON implements json.Unmarshaler. The index must have been
// created with New.
func (i *Index[C, T, S]) UnmarshalJSON(data []byte) error {
	if i.factory == nil {
		return errors.New("index: cannot unmarshal into an index created without New")
	}
	var file File[T]
	if err := json.Unmarshal(data, &file); err != nil {
		return NewDeserializationError("", err.Error())
	}
	return i.Deserialize(file)
}
