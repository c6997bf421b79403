// Package errors provides structured error types shared across
// StatusKit components.
//
// Errors carry a classification code, a human-readable message, an
// optional cause, and optional context for debugging. The codes that
// matter most to the health pipeline are ErrCodeConfiguration (a
// missing credential; the affected provider reports "unknown") and
// ErrCodeUpstream (a transient failure; the provider reports
// "degraded" with the cause preserved).
package errors
