// Package metrics exposes queue and HTTP instrumentation through a Recorder
// interface with no-op and Prometheus implementations.
package metrics
