package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storageWritesTotal, storageBytesWritten, signedURLsMinted) }

var storageWritesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storage_writes_total",
		Help: "Object storage writes labeled by category and success.",
	},
	[]string{"category", "success"},
)

var storageBytesWritten = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "storage_bytes_written_total",
		Help: "Total bytes written to object storage.",
	},
)

var signedURLsMinted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "signed_urls_minted_total",
		Help: "Signing calls actually issued (cache misses).",
	},
)

func IncStorageWrite(category string, success bool, bytes int64) {
	s := "true"
	if !success {
		s = "false"
	}
	storageWritesTotal.WithLabelValues(norm(category), s).Inc()
	if success && bytes > 0 {
		storageBytesWritten.Add(float64(bytes))
	}
}

func IncSignedURLMinted() { signedURLsMinted.Inc() }
