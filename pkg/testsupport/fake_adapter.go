package testsupport

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-metadata-cache/cache"
)

// Operations a FakeAdapter can be told to fail.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
	OpClear  = "clear"
)

var _ cache.Adapter = (*FakeAdapter)(nil)

// FakeAdapter is an in-memory cache.Adapter with per-operation failure
// injection and call counting. Clear removes every entry, like memcached.
type FakeAdapter struct {
	mu       sync.Mutex
	entries  map[string][]byte
	ttls     map[string]time.Duration
	failures map[string]error
	calls    map[string]int
	options  []cache.Options
	closed   bool
}

// NewFakeAdapter creates an empty FakeAdapter.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		entries:  make(map[string][]byte),
		ttls:     make(map[string]time.Duration),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Constructor returns a cache.Constructor handing out f and recording the
// options it was called with.
func (f *FakeAdapter) Constructor() cache.Constructor {
	return func(_ context.Context, opts cache.Options) (cache.Adapter, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.options = append(f.options, opts)
		return f, nil
	}
}

// ConstructedWith returns the options of every Constructor call.
func (f *FakeAdapter) ConstructedWith() []cache.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]cache.Options, len(f.options))
	copy(out, f.options)
	return out
}

// FailOn makes every later call of op return err. A nil err heals op.
func (f *FakeAdapter) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Calls returns how many times op was invoked, failed calls included.
func (f *FakeAdapter) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Keys returns the stored keys in sorted order.
func (f *FakeAdapter) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entry returns a copy of the value stored under key.
func (f *FakeAdapter) Entry(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// TTL returns the ttl key was last written with.
func (f *FakeAdapter) TTL(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}

// Put seeds an entry without counting a call or applying failures.
func (f *FakeAdapter) Put(key string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = append([]byte(nil), value...)
}

// Closed reports whether Close was called.
func (f *FakeAdapter) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeAdapter) begin(op string) error {
	f.calls[op]++
	return f.failures[op]
}

func (f *FakeAdapter) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(OpGet); err != nil {
		return nil, false, err
	}
	v, ok := f.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (f *FakeAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(OpSet); err != nil {
		return err
	}
	f.entries[key] = append([]byte(nil), value...)
	f.ttls[key] = ttl
	return nil
}

func (f *FakeAdapter) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(OpDelete); err != nil {
		return err
	}
	delete(f.entries, key)
	delete(f.ttls, key)
	return nil
}

func (f *FakeAdapter) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(OpClear); err != nil {
		return err
	}
	f.entries = make(map[string][]byte)
	f.ttls = make(map[string]time.Duration)
	return nil
}

func (f *FakeAdapter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
