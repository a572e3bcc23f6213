// Package pg provides PostgreSQL connection-pool management with retry
// logic, a healthcheck helper, and error classification helpers for pgx.
// The resulting pool plugs into the principal package's PostgresStore.
package pg
