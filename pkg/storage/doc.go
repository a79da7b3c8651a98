// Package storage defines the synchronous key/value contract persisted state
// is written through, together with the in-memory default backend and
// composable wrappers (key namespacing, LRU read cache, Prometheus
// instrumentation). Durable backends live in the boltdb, sqlite, redis and s3
// subpackages.
package storage
