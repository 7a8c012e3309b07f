// Package telemetry exposes Prometheus metrics for the MCP endpoint:
// request counts and latency by RPC method, and tool call outcomes.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's instrument set backed by its own registry,
// so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	rpcTotal    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	toolCalls   *prometheus.CounterVec
}

// New creates a Metrics set with Go runtime and process collectors attached.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		rpcTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcp_gateway",
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC requests by method and error code (0 = success).",
		}, []string{"method", "code"}),
		rpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mcp_gateway",
			Name:      "rpc_duration_seconds",
			Help:      "JSON-RPC request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcp_gateway",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
	}
}

// ObserveRPC records one JSON-RPC request. code is 0 for success, or the
// JSON-RPC error code.
func (m *Metrics) ObserveRPC(method string, code int, elapsed time.Duration) {
	m.rpcTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveToolCall records one tool invocation.
func (m *Metrics) ObserveToolCall(tool string, isError bool) {
	outcome := "ok"
	if isError {
		outcome = "error"
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// Handler serves the scrape endpoint for this instrument set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
