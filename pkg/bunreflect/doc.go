// Package bunreflect computes model metadata from uptrace/bun schema tables.
//
// A Reflector plugs into metadata.Reader or metadata.GetOrCompute so that the
// bun table registry is consulted only on a cache miss. Join models of
// many-to-many relations must be registered with db.RegisterModel first.
package bunreflect
