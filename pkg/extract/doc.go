// Package extract reads logical values out of loosely specified JSON
// payloads.
//
// Several upstream monitoring APIs return the same logical value under
// different field names or nesting depending on account tier and API
// revision. Rather than scattering ad hoc fallback chains through the
// collectors, each logical field is declared as an ordered list of
// candidate paths tried in sequence; the first candidate that parses
// wins. Candidate order is therefore part of the extraction contract
// and is covered by tests.
package extract
