// Package config provides a type-safe, cached way to load application
// configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: LoadEnv
// reads one or more .env files into the process environment, and Load parses
// the environment into any struct using field tags. Each configuration type
// is parsed once per process; subsequent calls return the cached value.
// ResetCache exists for tests.
package config
