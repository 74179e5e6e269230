package cache

import (
	"context"
	"errors"
	"sort"
)

// AdapterFactory resolves backend names to adapter constructors. The table is
// copied at construction and never mutated afterwards, so a factory can be
// shared freely between stores and goroutines.
type AdapterFactory struct {
	constructors map[string]Constructor
}

// NewAdapterFactory creates a factory over the provided name to constructor table.
// Nil constructors are ignored.
func NewAdapterFactory(constructors map[string]Constructor) *AdapterFactory {
	table := make(map[string]Constructor, len(constructors))
	for name, ctor := range constructors {
		if ctor == nil {
			continue
		}
		table[name] = ctor
	}
	return &AdapterFactory{constructors: table}
}

// NewInstance builds the adapter registered under name.
//
// Unknown names fail with *UnsupportedAdapterError. Invalid options fail with
// *ConfigError, whether caught here or by the constructor. Any other
// constructor failure that is not already part of the error taxonomy is
// reported as *ConnectionError.
func (f *AdapterFactory) NewInstance(ctx context.Context, name string, opts Options) (Adapter, error) {
	ctor, ok := f.constructors[name]
	if !ok {
		return nil, &UnsupportedAdapterError{Name: name, Known: f.Names()}
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	adapter, err := ctor(ctx, opts)
	if err != nil {
		var cfgErr *ConfigError
		if isTaxonomyError(err) || errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, &ConnectionError{Adapter: name, Op: "connect", Err: err}
	}
	return adapter, nil
}

// Supports reports whether name is a registered backend.
func (f *AdapterFactory) Supports(name string) bool {
	_, ok := f.constructors[name]
	return ok
}

// Names returns the registered backend names in sorted order.
func (f *AdapterFactory) Names() []string {
	names := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
