package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/cespare/xxhash/v2"
	"github.com/goliatone/go-metadata-cache/cache"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	// AdapterLibmemcached is the factory name of the memcached adapter.
	AdapterLibmemcached = "libmemcached"

	// maxMemcachedKeyLen is the protocol limit on key length.
	maxMemcachedKeyLen = 250

	// maxRelativeExpiry is the largest expiration memcached treats as relative
	// seconds; larger values are read as unix timestamps.
	maxRelativeExpiry = 30 * 24 * time.Hour
)

// MemcachedPools shares memcached clients between adapters configured with the
// same persistent ID and server list. Adapters without a persistent ID get a
// private client.
type MemcachedPools struct {
	clients *xsync.MapOf[string, *memcache.Client]
}

// NewMemcachedPools creates an empty pool registry.
func NewMemcachedPools() *MemcachedPools {
	return &MemcachedPools{clients: xsync.NewMapOf[string, *memcache.Client]()}
}

// Client returns the pooled client for opts, creating it on first use.
func (p *MemcachedPools) Client(opts cache.Options) *memcache.Client {
	addrs := opts.Addresses()
	if opts.PersistentID == "" {
		return newMemcacheClient(addrs, opts.CallTimeout())
	}

	poolKey := opts.PersistentID + "|" + strings.Join(addrs, ",")
	client, _ := p.clients.LoadOrCompute(poolKey, func() *memcache.Client {
		return newMemcacheClient(addrs, opts.CallTimeout())
	})
	return client
}

// Len returns the number of pooled clients.
func (p *MemcachedPools) Len() int {
	return p.clients.Size()
}

func newMemcacheClient(addrs []string, timeout time.Duration) *memcache.Client {
	client := memcache.New(addrs...)
	client.Timeout = timeout
	return client
}

// memcachedAdapter stores entries in memcached through gomemcache. Connection
// handling is lazy: construction never dials, the first call does.
type memcachedAdapter struct {
	client  *memcache.Client
	timeout time.Duration
}

var _ cache.Adapter = (*memcachedAdapter)(nil)

// NewMemcachedConstructor returns a cache.Constructor that draws clients from pools.
func NewMemcachedConstructor(pools *MemcachedPools) cache.Constructor {
	return func(ctx context.Context, opts cache.Options) (cache.Adapter, error) {
		if len(opts.Servers) == 0 {
			return nil, &cache.ConfigError{Field: "servers", Message: "at least one memcached server is required"}
		}
		return &memcachedAdapter{
			client:  pools.Client(opts),
			timeout: opts.CallTimeout(),
		}, nil
	}
}

// Get implements cache.Adapter.Get.
func (m *memcachedAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, classify(AdapterLibmemcached, "get", m.timeout, err)
	}

	item, err := m.client.Get(NormalizeMemcachedKey(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify(AdapterLibmemcached, "get", m.timeout, err)
	}
	return item.Value, true, nil
}

// Set implements cache.Adapter.Set.
func (m *memcachedAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return classify(AdapterLibmemcached, "set", m.timeout, err)
	}

	err := m.client.Set(&memcache.Item{
		Key:        NormalizeMemcachedKey(key),
		Value:      value,
		Expiration: MemcachedExpiration(ttl),
	})
	return classify(AdapterLibmemcached, "set", m.timeout, err)
}

// Delete implements cache.Adapter.Delete.
func (m *memcachedAdapter) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return classify(AdapterLibmemcached, "delete", m.timeout, err)
	}

	err := m.client.Delete(NormalizeMemcachedKey(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return classify(AdapterLibmemcached, "delete", m.timeout, err)
}

// Clear flushes every server in the pool. memcached cannot enumerate keys, so
// the whole server namespace is dropped, prefix or not.
func (m *memcachedAdapter) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return classify(AdapterLibmemcached, "clear", m.timeout, err)
	}
	return classify(AdapterLibmemcached, "clear", m.timeout, m.client.FlushAll())
}

// Close is a no-op: the client belongs to the pool and may be shared.
func (m *memcachedAdapter) Close() error {
	return nil
}

// MemcachedExpiration converts a TTL to the memcached expiration field,
// clamping at the 30 day relative limit (minus a minute).
func MemcachedExpiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl >= maxRelativeExpiry {
		return int32((maxRelativeExpiry - time.Minute) / time.Second)
	}
	secs := int32(ttl / time.Second)
	if secs == 0 {
		secs = 1
	}
	return secs
}

// NormalizeMemcachedKey returns key unchanged when memcached accepts it.
// Otherwise it keeps a readable, sanitized head and appends the xxhash64 of
// the full key so distinct inputs stay distinct.
func NormalizeMemcachedKey(key string) string {
	if validMemcachedKey(key) {
		return key
	}

	digest := fmt.Sprintf("#%016x", xxhash.Sum64String(key))
	headLen := maxMemcachedKeyLen - len(digest)

	var b strings.Builder
	b.Grow(maxMemcachedKeyLen)
	for i := 0; i < len(key) && b.Len() < headLen; i++ {
		c := key[i]
		if c <= ' ' || c == 0x7f {
			c = '_'
		}
		b.WriteByte(c)
	}
	b.WriteString(digest)
	return b.String()
}

func validMemcachedKey(key string) bool {
	if len(key) == 0 || len(key) > maxMemcachedKeyLen {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}
