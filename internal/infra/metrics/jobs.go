package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, pollAttemptsTotal, jobsStaleReaped) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_jobs_processed_total",
		Help: "Total number of generation jobs finished, labeled by kind and terminal status.",
	},
	[]string{"kind", "status"}, // 'completed', 'error'
)

var pollAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "video_poll_attempts_total",
		Help: "Total provider operation polls, labeled by outcome.",
	},
	[]string{"outcome"}, // 'pending', 'done', 'error'
)

var jobsStaleReaped = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "generation_jobs_stale_reaped_total",
		Help: "Jobs forced to error by the janitor.",
	},
)

func IncJobProcessed(kind, status string) {
	jobsProcessedTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func IncPollAttempt(outcome string) {
	pollAttemptsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddStaleReaped(n int64) {
	if n > 0 {
		jobsStaleReaped.Add(float64(n))
	}
}
