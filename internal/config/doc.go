// Package config loads, normalizes, and validates foodhub configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FOODHUB_STORAGE_BACKEND. The Config type centralizes every knob the CLI and
// the staff API need, so the state directory, storage backend, and log
// settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical backend names, and clear validation errors.
package config
