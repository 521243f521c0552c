package index

// File is the persisted form of an index: the records by id and the
// serialized content of every key by canonical name.
type File[T any] struct {
	Items   []T                   `json:"items"`
	Indexes map[string]KeyContent `json:"indexes"`
}

// KeyContent is the persisted form of one key. Values are formatted the way
// the key prints them; ids are ascending. Keys without words omit Words.
type KeyContent struct {
	Keys  map[string][]uint32 `json:"keys"`
	Words map[string][]uint32 `json:"words,omitempty"`
}
