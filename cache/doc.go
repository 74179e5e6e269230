// Package cache defines the backend contracts used by the metadata stores.
//
// # Overview
//
// This package exports the pieces every backend has to agree on:
//
//   - Adapter: a key/value capability with TTL support (get, set, delete, clear)
//   - AdapterFactory: resolves a backend name plus Options into an Adapter
//   - Options: the configuration bag shared by all backends, with non-destructive defaulting
//   - KeySerializer: derives the cache key a model's metadata row lives under
//
// Concrete adapters live in internal/cacheinfra and are wired into a factory by
// the pkg/di package:
//
//	factory := di.NewAdapterFactory()
//	adapter, err := factory.NewInstance(ctx, "libmemcached", cache.Options{
//		Servers: []cache.Server{{Host: "127.0.0.1", Port: 11211}},
//	})
//
// The factory table is an explicit value. Tests and applications can build
// their own with NewAdapterFactory and register fakes or additional backends.
//
// # Options
//
// A zero Options field means "unset". WithDefaults returns a merged copy and
// never touches the caller's value:
//
//	opts := cache.Options{Lifetime: 60}.WithDefaults(cache.Options{
//		PersistentID: "ph-mm-mcid-",
//		Prefix:       "ph-mm-memc-",
//		Lifetime:     172800,
//	})
//	// opts.Lifetime == 60, opts.Prefix == "ph-mm-memc-"
//
// # Error Handling
//
// Backend failures are reported through a small taxonomy so callers can pick a
// policy without string matching:
//
//   - *UnsupportedAdapterError: the factory does not know the backend name
//   - *ConnectionError: the backend could not be reached
//   - *TimeoutError: a call exceeded Options.Timeout
//   - *SerializationError: a row could not be encoded or decoded
//
// Each type matches its sentinel through errors.Is (ErrConnection, ErrTimeout, ...).
// Invalid options are reported as *ConfigError.
package cache
