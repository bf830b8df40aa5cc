package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal) }

var cacheRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Cache lookups labeled by cache name and hit/miss.",
	},
	[]string{"cache", "result"},
)

func IncCacheRequest(cache, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cache), norm(result)).Inc()
}
