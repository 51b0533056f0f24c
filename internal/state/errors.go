package state

import "errors"

// ErrNoChange may be returned from an Update callback to skip the save.
var ErrNoChange = errors.New("state unchanged")

// ErrSchemaMismatch indicates the SQLite schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrLockTimeout is returned when the cross-process storage lock could not be
// acquired before the configured timeout.
var ErrLockTimeout = errors.New("storage lock timeout")

// errCorrupt marks a payload that cannot be used as a document.
var errCorrupt = errors.New("corrupt state document")
