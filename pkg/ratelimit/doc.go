// Package ratelimit throttles clients of the search API. Every search scans
// the whole data directory, so a per-client budget keeps one caller from
// starving the rest.
//
// MemoryLimiter is a token bucket per client inside one process.
// RedisLimiter shares a fixed-window counter between instances.
//
// # Overview
//
// Middleware keys requests by ClientIP and answers 429 with Retry-After
// once the budget is spent. A limiter error lets the request through.
package ratelimit
