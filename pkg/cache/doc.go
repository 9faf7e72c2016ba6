// Package cache memoizes encoded search responses for a fixed time window.
//
// # Overview
//
// A response is cached under a key derived from every parameter that can
// change it. Entries older than the configured TTL are never served; they
// behave exactly like a miss and are overwritten by the next Set. The cache
// is an optimization only, and a Disabled cache yields identical responses.
//
// Three implementations share the Cache interface:
//
//   - MemoryCache: bounded in-process LRU with an injectable clock
//   - RedisCache: shared cache using SET ... EX for expiry
//   - Disabled: always misses
//
// # Keys
//
// Key format version: v1
//
//	search:v1:{sha256 of canonical parameters}
//
// The field list is sorted and deduplicated before hashing, so the order in
// which a caller listed fields never changes the key. Changing the canonical
// encoding in Key requires bumping the version prefix.
package cache
