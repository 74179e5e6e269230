package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-metadata-cache/cache"
	"github.com/viccon/sturdyc"
)

// MemoryConfig holds the configuration for the sturdyc backed "memory" adapter.
type MemoryConfig struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the time-to-live for every cached entry. sturdyc applies one TTL
	// to the whole client, so per call TTLs are ignored by this adapter.
	// Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration

	// Prefix scopes Clear to the keys this adapter namespace owns.
	Prefix string
}

// DefaultMemoryConfig returns a MemoryConfig with sensible defaults.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// MemoryConfigFromOptions maps adapter options onto the sturdyc configuration,
// falling back to DefaultMemoryConfig for anything the options leave unset.
func MemoryConfigFromOptions(opts cache.Options) MemoryConfig {
	cfg := DefaultMemoryConfig()
	if opts.Capacity > 0 {
		cfg.Capacity = opts.Capacity
	}
	if opts.TTL() > 0 {
		cfg.TTL = opts.TTL()
	}
	cfg.Prefix = opts.Prefix
	return cfg
}

// ToSturdycOptions converts the optional settings to sturdyc options.
// Capacity, NumShards, TTL, and EvictionPercentage are passed directly
// to sturdyc.New() and are not included here.
func (c MemoryConfig) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// Validate checks if the configuration values are valid.
func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return &cache.ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &cache.ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &cache.ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &cache.ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	return nil
}

// sturdycAdapter keeps entries in process memory using a sharded sturdyc client.
type sturdycAdapter struct {
	client *sturdyc.Client[[]byte]
	prefix string
}

var _ cache.Adapter = (*sturdycAdapter)(nil)

// NewSturdycAdapter creates the in-process adapter.
func NewSturdycAdapter(cfg MemoryConfig) (*sturdycAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycAdapter{client: client, prefix: cfg.Prefix}, nil
}

func newMemoryAdapter(ctx context.Context, opts cache.Options) (cache.Adapter, error) {
	return NewSturdycAdapter(MemoryConfigFromOptions(opts))
}

// Get implements cache.Adapter.Get.
func (s *sturdycAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(value), true, nil
}

// Set implements cache.Adapter.Set. The client wide TTL applies.
func (s *sturdycAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.client.Set(key, cloneBytes(value))
	return nil
}

// Delete implements cache.Adapter.Delete.
func (s *sturdycAdapter) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Clear removes every entry whose key starts with the adapter prefix.
func (s *sturdycAdapter) Clear(ctx context.Context) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, s.prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Close implements cache.Adapter.Close.
func (s *sturdycAdapter) Close() error {
	return nil
}

// Size returns the number of entries currently held.
func (s *sturdycAdapter) Size() int {
	return s.client.Size()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
