// Package cache provides TTL-bounded snapshot stores used to memoize
// the expensive aggregation pass.
//
// Two implementations share the Store contract: MemoryStore keeps
// entries in process with lazy read-time eviction, and RedisStore
// keeps them in a shared Redis instance so multiple replicas serve the
// same cache window. The aggregator treats the store as an
// optimization only; every entry can be rebuilt by a fresh pass.
package cache
