// Package queue implements the per-stall token queue operations.
//
// Engine is the only writer of the token document. Each operation is one
// state.Store.Update cycle: load, mutate in memory, save. Unknown stalls are
// rejected before storage is touched, so callers driven by dynamic input
// (URL segments, CLI arguments) fail soft without side effects.
package queue
