package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(providerCallsLatencyMs, providerImagesTotal) }

var providerCallsLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "provider_calls_latency_ms",
		Help:    "Generative provider call latency distribution in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 20000, 40000, 80000},
	},
	[]string{"provider", "operation", "success"},
)

var providerImagesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "provider_images_generated_total",
		Help: "Images returned by providers.",
	},
	[]string{"provider"},
)

func ObserveProviderCall(provider, operation string, latencyMs int, success bool) {
	providerCallsLatencyMs.WithLabelValues(norm(provider), norm(operation), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func AddProviderImages(provider string, n int) {
	if n > 0 {
		providerImagesTotal.WithLabelValues(norm(provider)).Add(float64(n))
	}
}
