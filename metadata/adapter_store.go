package metadata

import (
	"context"
	"time"

	"github.com/goliatone/go-metadata-cache/cache"
)

const (
	libmemcachedAdapter = "libmemcached"
	redisAdapter        = "redis"
)

// AdapterProvider builds cache adapters by backend name. *cache.AdapterFactory
// satisfies it.
type AdapterProvider interface {
	NewInstance(ctx context.Context, name string, opts cache.Options) (cache.Adapter, error)
}

// LibmemcachedDefaults are the options merged under caller options by NewLibmemcached.
func LibmemcachedDefaults() cache.Options {
	return cache.Options{
		PersistentID: "ph-mm-mcid-",
		Prefix:       "ph-mm-memc-",
		Lifetime:     172800,
		Servers:      []cache.Server{{Host: "127.0.0.1", Port: 11211, Weight: 1}},
		Timeout:      cache.DefaultTimeout,
	}
}

// RedisDefaults are the options merged under caller options by NewRedis.
func RedisDefaults() cache.Options {
	return cache.Options{
		Prefix:   "ph-mm-reds-",
		Lifetime: 172800,
		Servers:  []cache.Server{{Host: "127.0.0.1", Port: 6379}},
		Timeout:  cache.DefaultTimeout,
	}
}

// AdapterStore is a MetadataStore whose backend is a single cache.Adapter.
type AdapterStore struct {
	*MetadataStore
	adapter cache.Adapter
	remote  *adapterBackend
	options cache.Options
}

// NewLibmemcached creates a store backed by memcached. Unset options take
// their value from LibmemcachedDefaults; opts itself is not modified.
func NewLibmemcached(ctx context.Context, provider AdapterProvider, opts cache.Options, storeOpts ...StoreOption) (*AdapterStore, error) {
	return NewAdapterStore(ctx, provider, libmemcachedAdapter, opts, LibmemcachedDefaults(), storeOpts...)
}

// NewRedis creates a store backed by redis. Unset options take their value
// from RedisDefaults.
func NewRedis(ctx context.Context, provider AdapterProvider, opts cache.Options, storeOpts ...StoreOption) (*AdapterStore, error) {
	return NewAdapterStore(ctx, provider, redisAdapter, opts, RedisDefaults(), storeOpts...)
}

// NewAdapterStore merges opts over defaults, obtains the named adapter from
// provider and wraps it in a MetadataStore.
func NewAdapterStore(
	ctx context.Context,
	provider AdapterProvider,
	name string,
	opts cache.Options,
	defaults cache.Options,
	storeOpts ...StoreOption,
) (*AdapterStore, error) {
	effective := opts.WithDefaults(defaults)
	adapter, err := provider.NewInstance(ctx, name, effective)
	if err != nil {
		return nil, err
	}

	cfg := newStoreConfig(name, storeOpts)
	backend := &adapterBackend{
		adapter: adapter,
		keys:    cfg.keySerializer,
		prefix:  effective.Prefix,
		ttl:     effective.TTL(),
	}
	return &AdapterStore{
		MetadataStore: newStore(backend, cfg),
		adapter:       adapter,
		remote:        backend,
		options:       effective,
	}, nil
}

// EffectiveOptions returns the options after defaults were applied.
func (s *AdapterStore) EffectiveOptions() cache.Options {
	return s.options.WithDefaults(cache.Options{})
}

// Adapter returns the underlying cache adapter.
func (s *AdapterStore) Adapter() cache.Adapter { return s.adapter }

// Key returns the backend key the row of model is stored under.
func (s *AdapterStore) Key(model ModelIdentity) string {
	return s.remote.key(model)
}

// adapterBackend maps models to prefixed adapter keys.
type adapterBackend struct {
	adapter cache.Adapter
	keys    cache.KeySerializer
	prefix  string
	ttl     time.Duration
}

func (b *adapterBackend) key(model ModelIdentity) string {
	return b.keys.SerializeKey(b.prefix, string(model))
}

func (b *adapterBackend) Get(ctx context.Context, model ModelIdentity) ([]byte, bool, error) {
	return b.adapter.Get(ctx, b.key(model))
}

func (b *adapterBackend) Set(ctx context.Context, model ModelIdentity, data []byte) error {
	return b.adapter.Set(ctx, b.key(model), data, b.ttl)
}

func (b *adapterBackend) Clear(ctx context.Context) error {
	return b.adapter.Clear(ctx)
}

func (b *adapterBackend) Close() error {
	return b.adapter.Close()
}
