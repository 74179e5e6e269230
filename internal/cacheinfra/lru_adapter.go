package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-metadata-cache/cache"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// AdapterLRU is the factory name of the bounded in-process adapter.
const AdapterLRU = "lru"

const defaultLRUCapacity = 4096

// lruAdapter is a size bounded in-process cache with a single TTL.
type lruAdapter struct {
	data   *expirable.LRU[string, []byte]
	prefix string
}

var _ cache.Adapter = (*lruAdapter)(nil)

func newLRUAdapter(ctx context.Context, opts cache.Options) (cache.Adapter, error) {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = defaultLRUCapacity
	}
	return &lruAdapter{
		data:   expirable.NewLRU[string, []byte](capacity, nil, opts.TTL()),
		prefix: opts.Prefix,
	}, nil
}

func (l *lruAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := l.data.Get(key)
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(v), true, nil
}

func (l *lruAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	l.data.Add(key, cloneBytes(value))
	return nil
}

func (l *lruAdapter) Delete(ctx context.Context, key string) error {
	l.data.Remove(key)
	return nil
}

func (l *lruAdapter) Clear(ctx context.Context) error {
	if l.prefix == "" {
		l.data.Purge()
		return nil
	}
	for _, key := range l.data.Keys() {
		if strings.HasPrefix(key, l.prefix) {
			l.data.Remove(key)
		}
	}
	return nil
}

func (l *lruAdapter) Close() error {
	return nil
}
