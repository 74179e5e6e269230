package cacheinfra

import "github.com/goliatone/go-metadata-cache/cache"

// AdapterMemory is the factory name of the sturdyc backed in-process adapter.
const AdapterMemory = "memory"

// Constructors returns a fresh name to constructor table for every built-in
// backend. Each call owns its own memcached pool registry, so two tables never
// share connections.
func Constructors() map[string]cache.Constructor {
	pools := NewMemcachedPools()
	return map[string]cache.Constructor{
		AdapterLibmemcached: NewMemcachedConstructor(pools),
		AdapterRedis:        newRedisAdapter,
		AdapterMemory:       newMemoryAdapter,
		AdapterLRU:          newLRUAdapter,
	}
}
