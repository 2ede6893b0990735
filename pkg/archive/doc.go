// Package archive orchestrates the incremental download of OpenTDB
// trivia questions into local per-category datasets.
//
// The download is strictly sequential. The session token is a single
// process-wide resource shared by all categories: the server uses it to
// avoid re-serving questions, and every local duplicate ledger is only
// meaningful for the token window it was built under. Rotating the token
// while another category still has pending work against it would corrupt
// that category's ledger, so the token is only ever (re)obtained at the
// top of a category download, never mid-loop, and categories never
// overlap in flight.
//
// Each category download survives partial failure: the dataset file is
// rewritten whole after the page loop ends, whatever stopped it, so an
// interrupted run resumes cleanly from per-category files.
package archive
