// Package redis provides Redis connection management with retry logic and a
// healthcheck helper. The resulting client plugs into the ratelimit package's
// RedisStore for multi-instance attempt counting.
package redis
