// Package credentials obtains short-lived signed credentials for the
// cloud monitoring, analytics, and search index APIs.
//
// A Client memoizes one authorization round-trip per distinct scope
// signature (sorted, de-duplicated scope set). The in-flight exchange
// itself is shared, not only its result, so concurrent callers for the
// same signature never fan out into parallel authorizations.
//
// A missing service account triple surfaces as ErrMissingCredentials,
// a configuration error callers can tell apart from transient network
// failure; the distinction drives the "unknown" versus "degraded"
// choice in the collectors.
package credentials
