// Package state owns the persisted token queue document.
//
// A Store reads and writes one JSON document under a single key through a
// pluggable Backend. Memory, file, and SQLite backends are provided. All
// mutations go through Store.Update, which serializes the load, mutate, and
// save cycle inside the process and, for backends that implement Locker,
// across processes sharing the same storage.
//
// Loading never fails on bad data: an absent or corrupt payload is replaced
// by the default document, with the corrupt bytes copied aside first.
package state
