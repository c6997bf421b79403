// Package timeseries issues aligned, reduced range queries against
// the cloud monitoring API and collapses each response to a single
// scalar with its collection time.
//
// Empty result sets are data, not errors: a window with no samples
// yields a nil value and nil timestamp so callers can render "no
// data" without special-casing failures. Point values arrive in one
// of several typed encodings (double, int64-as-string, distribution);
// CoalesceValue folds them into one number.
package timeseries
