// Package ratelimit implements the per-principal attempt counter that
// protects second-factor and recovery-code verification from brute-force
// guessing.
//
// The algorithm is a fixed window anchored to the first failed attempt:
// Hit increments the counter, EnsureNotLimited denies further attempts once
// the configured threshold is reached within the window, and Clear resets
// the counter on successful verification. Once the window elapses the
// counter expires as if cleared. Threshold and window are configuration,
// not per-call-site constants.
//
// Two storage backends are provided: MemoryStore for single-process
// deployments and tests, and RedisStore for deployments where attempts for
// one principal may land on different instances. Increments are atomic in
// both, so concurrent failures cannot undercount.
package ratelimit
