// Package metrics holds the Prometheus collectors shared by the feeds, the
// RPC gateway and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feewatch_cycles_total", Help: "Feed cycles by outcome"},
		[]string{"feed", "status"},
	)
	CycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "feewatch_cycle_duration_seconds", Help: "Feed cycle latency", Buckets: prometheus.DefBuckets},
		[]string{"feed"},
	)
	TicksSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feewatch_ticks_skipped_total", Help: "Ticks skipped because a cycle was still in flight"},
		[]string{"feed"},
	)
	SeriesLength = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "feewatch_series_length", Help: "Records held per series"},
		[]string{"feed"},
	)
	MergeConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feewatch_merge_conflicts_total", Help: "Immutable blocks refetched with a different value"},
		[]string{"feed"},
	)
	DecodeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "feewatch_decode_errors_total", Help: "Transfer log entries discarded as undecodable"},
	)
	RPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feewatch_rpc_requests_total", Help: "JSON-RPC calls"},
		[]string{"method", "status"},
	)
	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "feewatch_rpc_duration_seconds", Help: "JSON-RPC call latency", Buckets: prometheus.DefBuckets},
		[]string{"method"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feewatch_http_requests_total", Help: "HTTP requests"},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		CyclesTotal,
		CycleDuration,
		TicksSkipped,
		SeriesLength,
		MergeConflicts,
		DecodeErrors,
		RPCRequests,
		RPCDuration,
		HTTPRequests,
	)
}

// StatusLabel buckets an HTTP status code.
func StatusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}
