package index

// selection is the narrowing state shared by a schema and its keys.
// A nil set means unbounded: every record is selected.
type selection struct {
	selected idSet
	err      error
}

// filter intersects the selection with candidates. A nil candidates set is empty.
func (s *selection) filter(candidates idSet) {
	if s.selected == nil {
		next := make(idSet, len(candidates))
		next.addAll(candidates)
		s.selected = next
		return
	}

	small, large := candidates, s.selected
	if len(large) < len(small) {
		small, large = large, small
	}
	next := make(idSet)
	for id := range small {
		if large.has(id) {
			next.add(id)
		}
	}
	s.selected = next
}

func (s *selection) isSelected(id uint32) bool {
	return s.selected == nil || s.selected.has(id)
}

func (s *selection) bounded() bool {
	return s.selected != nil
}

// fail records the first error of a query chain.
func (s *selection) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *selection) failed() bool {
	return s.err != nil
}

func (s *selection) reset() {
	s.selected = nil
	s.err = nil
}
