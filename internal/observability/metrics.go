package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bqmcp_tool_calls_total",
			Help: "Total number of tool invocations by outcome category.",
		},
		[]string{"tool", "outcome"},
	)

	toolCallDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bqmcp_tool_call_duration_seconds",
			Help:    "Tool invocation latency, including the BigQuery round trip.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"tool"},
	)

	queryBytesProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bqmcp_query_bytes_processed_total",
			Help: "Bytes processed by successful run_query jobs.",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bqmcp_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bqmcp_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		toolCallsTotal,
		toolCallDurationSeconds,
		queryBytesProcessedTotal,
		httpRequestsTotal,
		httpRequestDurationSeconds,
	)
}

// ObserveToolCall records one dispatched tool call. outcome is "ok" or an
// error category.
func ObserveToolCall(tool, outcome string, elapsed time.Duration) {
	toolCallsTotal.WithLabelValues(tool, outcome).Inc()
	toolCallDurationSeconds.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func AddQueryBytes(n int64) {
	if n > 0 {
		queryBytesProcessedTotal.Add(float64(n))
	}
}

// ObserveHTTPRequest is fed by the router middleware; path should be the
// route pattern, not the raw URL, to keep label cardinality bounded.
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	s := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, path, s).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, path, s).Observe(elapsed.Seconds())
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
