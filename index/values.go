package index

type valuesKind uint8

const (
	valuesNone valuesKind = iota
	valuesScalar
	valuesSequence
)

// Values is what an accessor extracts from a record for one key: nothing,
// a single value, or a sequence of values. The zero value is None.
type Values struct {
	kind  valuesKind
	items []string
}

// None reports that the record has no value for the key. The record is
// skipped by that key (sparse facets are allowed).
func None() Values {
	return Values{}
}

// Scalar wraps a single value. An empty string is treated as None.
func Scalar(value string) Values {
	if value == "" {
		return Values{}
	}
	return Values{kind: valuesScalar, items: []string{value}}
}

// Sequence wraps a list of values. A nil slice is treated as None, while an
// empty non-nil slice is a present but empty sequence.
func Sequence(values ...string) Values {
	if values == nil {
		return Values{}
	}
	return Values{kind: valuesSequence, items: values}
}

// IsNone reports whether the accessor produced nothing.
func (v Values) IsNone() bool {
	return v.kind == valuesNone
}

// Items returns the values in order. It is empty for None.
func (v Values) Items() []string {
	return v.items
}
