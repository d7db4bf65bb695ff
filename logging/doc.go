// Package logging provides a minimal logging interface and adapters for the
// hive mind service.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the router, council, orchestrator and transport use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - LogToolCall / LogModelCall helpers recording duration and outcome
//
// Usage:
//
//	logger := logging.New(logging.Config{Level: "info", Format: "json"})
//	r := router.New(primary, func(o *router.Options) { o.Logger = logger })
//
// The interface stays minimal so callers can plug any structured logger.
package logging
