// Package metadata caches the structural metadata of persistent models:
// attributes, keys, column maps, data types and relations.
//
// A Store keeps one Row per model identity. Rows are held in a process-local
// mirror and, for adapter-backed stores, in a shared cache backend so that
// reflection runs once across processes:
//
//	factory := cache.NewAdapterFactory(constructors)
//	store, err := metadata.NewLibmemcached(ctx, factory, cache.Options{
//		Servers: []cache.Server{{Host: "10.0.0.5", Port: 11211}},
//	})
//	pks, err := metadata.GetOrCompute(ctx, store, "shop.Order", metadata.KindPrimaryKeys,
//		func(ctx context.Context) ([]string, error) { return []string{"id"}, nil })
//
// Backend failures on reads degrade to a miss. Reset clears the local mirror
// before the backend, so a failed Reset still leaves this process without
// stale rows.
package metadata
