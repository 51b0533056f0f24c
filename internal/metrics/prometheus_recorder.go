package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "foodhub"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	operations        *prom.CounterVec
	operationDuration *prom.HistogramVec
	queueDepth        *prom.GaugeVec
	httpRequests      *prom.CounterVec
	httpDuration      *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers the metrics on reg. A nil
// reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		operations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "queue_operations_total",
			Help:      "Queue operations by kind, stall, and result",
		}, []string{"op", "stall", "result"}),
		operationDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "queue_operation_duration_seconds",
			Help:      "Duration of queue read-modify-write cycles",
			Buckets:   prom.DefBuckets,
		}, []string{"op"}),
		queueDepth: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Tokens waiting per stall after the last operation",
		}, []string{"stall"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Staff API requests by route and status code",
		}, []string{"route", "code"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Staff API request latency",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(pr.operations, pr.operationDuration, pr.queueDepth, pr.httpRequests, pr.httpDuration)
	return pr
}

func (p *PrometheusRecorder) IncOperation(op, stall string, result ResultLabel) {
	if p == nil || p.operations == nil {
		return
	}
	p.operations.WithLabelValues(op, stall, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveOperationDuration(op string, d time.Duration) {
	if p == nil || p.operationDuration == nil {
		return
	}
	p.operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetQueueDepth(stall string, depth int) {
	if p == nil || p.queueDepth == nil {
		return
	}
	p.queueDepth.WithLabelValues(stall).Set(float64(depth))
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route string, status int, d time.Duration) {
	if p == nil || p.httpRequests == nil {
		return
	}
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
