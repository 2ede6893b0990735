// Package ratelimit provides rate limiting for calls to the OpenTDB API.
//
// OpenTDB enforces one request per five seconds per IP. The IntervalGate
// implements that contract as a single process-wide gate: every remote
// call acquires it before going out, regardless of which category or
// endpoint the call serves. The configured interval sits slightly above
// the API's stated floor to absorb clock skew.
//
// Usage:
//
//	gate := ratelimit.NewIntervalGate(5100 * time.Millisecond)
//
//	gate.Wait() // blocks until a permit is available
//	resp, err := httpClient.Get(url)
//
// The gate never fails; it only delays. Callers are served in arrival
// order with no further priority guarantees.
package ratelimit
