package relation

import "strings"

// FieldSet is an ordered set of distinct field names. The zero value is empty.
type FieldSet struct {
	names []string
	index map[string]struct{}
}

// NewFieldSet builds a set from names, keeping first-seen order.
// Surrounding whitespace is trimmed and empty names are dropped.
func NewFieldSet(names []string) FieldSet {
	fs := FieldSet{
		names: make([]string, 0, len(names)),
		index: make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := fs.index[n]; dup {
			continue
		}
		fs.index[n] = struct{}{}
		fs.names = append(fs.names, n)
	}
	return fs
}

// Has reports exact membership.
func (fs FieldSet) Has(name string) bool {
	_, ok := fs.index[name]
	return ok
}

func (fs FieldSet) Len() int {
	return len(fs.names)
}

// Names returns a copy of the names in configuration order.
func (fs FieldSet) Names() []string {
	return append([]string(nil), fs.names...)
}
