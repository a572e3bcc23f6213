// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// New builds a *slog.Logger from a set of Option functions: output format
// (text or json), minimum level, static attributes, and ContextExtractor
// callbacks that pull request-scoped values out of the context on every log
// call. WithDevelopment, WithStaging, and WithProduction apply sensible
// per-environment defaults.
//
// Helper constructors such as Error, UserID, Component, and Event live in
// attr.go and keep attribute naming consistent across the codebase. Error and
// Errors produce attributes only for non-nil errors, so they can be passed
// unconditionally.
package logger
