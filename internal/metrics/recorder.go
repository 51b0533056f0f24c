package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess      ResultLabel = "success"
	ResultUnknownStall ResultLabel = "unknown_stall"
	ResultError        ResultLabel = "error"
)

// Recorder defines observability hooks for queue operations. Implementations
// may forward to Prometheus or discard everything.
type Recorder interface {
	IncOperation(op, stall string, result ResultLabel)
	ObserveOperationDuration(op string, d time.Duration)
	SetQueueDepth(stall string, depth int)
	ObserveHTTPRequest(route string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncOperation(string, string, ResultLabel)      {}
func (NoopRecorder) ObserveOperationDuration(string, time.Duration) {}
func (NoopRecorder) SetQueueDepth(string, int)                     {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration) {}
