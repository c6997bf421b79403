// Package health defines the shared data model for the platform health
// aggregation service: normalized service statuses, scored metrics,
// derived alerts, and the composed snapshot returned to callers.
//
// # Design
//
// All upstream shapes are normalized into this model by the provider
// collectors. Two invariants hold everywhere:
//
//   - ServiceStatus.Health is always one of the five State values;
//     absent data resolves to StateUnknown, never to an empty string.
//   - Failure is data, not control flow: a degraded upstream appears as
//     explicit status and metric values, never as a missing field.
//
// Numeric fields that an upstream may not report are pointers so "no
// data" (nil) is distinguishable from zero.
package health
