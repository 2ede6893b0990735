// Package opentdb is the request gateway to the Open Trivia Database API.
//
// It provides a rate-limited HTTP client for the five remote endpoints
// (questions, categories, counts, token request, token reset), the wire
// models for their JSON envelopes, and base64 decoding of question text.
//
// The remote API has its own response-code enumeration that is separate
// from HTTP status: 0 success, 1 no results, 2 invalid parameter, 3 token
// not found, 4 token empty, 5 rate limited. The local sentinel CodeUnknown
// (-1) marks transport and parse failures where no remote code exists.
//
// The client performs no retries. Callers decide retry policy because the
// token endpoints and the questions endpoint have different semantics on
// failure.
package opentdb
