package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(httpRequestsTotal, httpLatencyMs) }

var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "API requests labeled by route and status code.",
	},
	[]string{"route", "code"},
)

var httpLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_latency_ms",
		Help:    "API request latency distribution in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000},
	},
	[]string{"route"},
)

func ObserveHTTPRequest(route string, code int, latencyMs int) {
	httpRequestsTotal.WithLabelValues(norm(route), strconv.Itoa(code)).Inc()
	httpLatencyMs.WithLabelValues(norm(route)).Observe(float64(latencyMs))
}
