package index

import (
	"fmt"
	"slices"
)

// Schema is the set of keys declared for an index, plus the selection
// narrowed by queries on a view. Concrete schemas embed *Schema and expose
// their keys as fields:
//
//	type Artifacts struct {
//		*index.Schema[Artifact, Artifact]
//		ID      *index.IdentityKey[Artifact, *Artifacts]
//		Version *index.SemverKey[Artifact, *Artifacts]
//	}
type Schema[C, T any] struct {
	sel     *selection
	nodes   []node[C]
	names   map[string]struct{}
	records []T
}

func newSchema[C, T any](records []T) *Schema[C, T] {
	return &Schema[C, T]{
		sel:     &selection{},
		names:   make(map[string]struct{}),
		records: records,
	}
}

// register adds a key in declaration order. Declaring two keys under the
// same name or alias is a programming error.
func (s *Schema[C, T]) register(n node[C]) {
	for _, name := range n.Names() {
		if _, exists := s.names[name]; exists {
			panic(fmt.Sprintf("index: key name '%s' declared twice", name))
		}
		s.names[name] = struct{}{}
	}
	s.nodes = append(s.nodes, n)
}

// KeyNames returns the canonical names of the declared keys in declaration order.
func (s *Schema[C, T]) KeyNames() []string {
	names := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		names[i] = n.Identity()
	}
	return names
}

// Err returns the first error raised by a query on this schema.
func (s *Schema[C, T]) Err() error {
	return s.sel.err
}

// IDs returns the selected record ids in ascending order.
func (s *Schema[C, T]) IDs() ([]uint32, error) {
	if s.sel.err != nil {
		return nil, s.sel.err
	}
	if !s.sel.bounded() {
		ids := make([]uint32, len(s.records))
		for i := range ids {
			ids[i] = uint32(i)
		}
		return ids, nil
	}
	return s.sel.selected.sorted(), nil
}

// Items returns the selected records in ascending id order. With no query
// applied that is every record in insertion order.
func (s *Schema[C, T]) Items() ([]T, error) {
	if s.sel.err != nil {
		return nil, s.sel.err
	}
	if !s.sel.bounded() {
		return slices.Clone(s.records), nil
	}
	ids := s.sel.selected.sorted()
	items := make([]T, 0, len(ids))
	for _, id := range ids {
		items = append(items, s.records[id])
	}
	return items, nil
}

// Count returns how many records are selected.
func (s *Schema[C, T]) Count() (int, error) {
	if s.sel.err != nil {
		return 0, s.sel.err
	}
	if !s.sel.bounded() {
		return len(s.records), nil
	}
	return len(s.sel.selected), nil
}

// Reset drops every query applied so far, selecting all records again.
func (s *Schema[C, T]) Reset() {
	s.sel.reset()
}

func (s *Schema[C, T]) serialize() map[string]KeyContent {
	indexes := make(map[string]KeyContent, len(s.nodes))
	for _, n := range s.nodes {
		indexes[n.Identity()] = n.serialize()
	}
	return indexes
}

// stage resolves each key's content by its canonical name, then its aliases,
// and decodes it. Nothing is installed until the returned commit runs.
func (s *Schema[C, T]) stage(indexes map[string]KeyContent, records int) (func(), error) {
	commits := make([]func(), 0, len(s.nodes))
	for _, n := range s.nodes {
		content, found := lookupContent(indexes, n.Names())
		if !found {
			return nil, NewDeserializationError(n.Identity(), "missing from persisted index")
		}
		commit, err := n.stage(content, records)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return func() {
		for _, commit := range commits {
			commit()
		}
	}, nil
}

func lookupContent(indexes map[string]KeyContent, names []string) (KeyContent, bool) {
	for _, name := range names {
		if content, ok := indexes[name]; ok {
			return content, true
		}
	}
	return KeyContent{}, false
}
