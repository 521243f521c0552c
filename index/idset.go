package index

import (
	"slices"
)

// idSet is a set of record ids.
type idSet map[uint32]struct{}

func newIDSet(ids ...uint32) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s idSet) add(id uint32) {
	s[id] = struct{}{}
}

func (s idSet) has(id uint32) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) addAll(other idSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// sorted returns the ids in ascending order.
func (s idSet) sorted() []uint32 {
	ids := make([]uint32, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
