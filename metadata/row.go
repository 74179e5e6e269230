package metadata

import (
	"sort"
)

// Row holds every known kind for one model. Rows handed out by a store are
// snapshots: the store never mutates a row after publishing it, and callers
// must not mutate the values they read.
type Row map[Kind]any

// Get returns the value stored for kind.
func (r Row) Get(kind Kind) (any, bool) {
	v, ok := r[kind]
	return v, ok
}

// With returns a copy of r with kind set to value.
func (r Row) With(kind Kind, value any) Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[kind] = value
	return out
}

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Kinds returns the kinds present in r in declaration order.
func (r Row) Kinds() []Kind {
	out := make([]Kind, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks that every value has the type required by its kind and can
// be serialized.
func (r Row) Validate() error {
	_, err := r.canonical()
	return err
}

// canonical returns a copy of r holding every value in the form a serializer
// round trip produces.
func (r Row) canonical() (Row, error) {
	out := make(Row, len(r))
	for _, k := range r.Kinds() {
		v, err := k.canonicalize(r[k])
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
