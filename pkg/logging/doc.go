// Package logging provides structured logging utilities for StatusKit
// components.
//
// # Overview
//
// This package wraps the standard library slog package with
// service-wide defaults: structured JSON output to stderr,
// environment-based level configuration (LOG_LEVEL), automatic service
// and version context on every record, and source location tracking
// for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: detailed diagnostic information with source location
//   - INFO: general informational messages (default)
//   - WARN/WARNING: potentially problematic situations
//   - ERROR: failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("pulsed", "v1.0.0")
//
//	    slog.Info("processing request", "id", "req-123")
//	    slog.Debug("detailed state", "data", complexObject)
//	    slog.Error("operation failed", "error", err)
//	}
//
// Setting an explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("pulsed", "v1.0.0", "warn")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug pulsed snapshot
package logging
