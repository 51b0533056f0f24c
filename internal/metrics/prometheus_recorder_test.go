package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncOperation("issue", "chaiverse", ResultSuccess)
	pr.IncOperation("issue", "doesnotexist", ResultUnknownStall)
	pr.ObserveOperationDuration("issue", 3*time.Millisecond)
	pr.SetQueueDepth("chaiverse", 2)
	pr.ObserveHTTPRequest("board", 200, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"foodhub_queue_operations_total",
		"foodhub_queue_operation_duration_seconds",
		"foodhub_queue_depth",
		"foodhub_http_requests_total",
	} {
		if !names[want] {
			t.Fatalf("expected metric %s, got %v", want, names)
		}
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncOperation("serve", "spicehub", ResultSuccess)
	pr.SetQueueDepth("spicehub", 0)
	pr.ObserveHTTPRequest("serve", 500, 0)

	var noop Recorder = NoopRecorder{}
	noop.IncOperation("clear", "sweetspot", ResultError)
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.SetQueueDepth("maggimitra", 4)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `foodhub_queue_depth{stall="maggimitra"} 4`) {
		t.Fatalf("expected queue depth sample, got %s", body)
	}
}
