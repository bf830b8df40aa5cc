package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tryonjewel-server/internal/config"
	"tryonjewel-server/internal/domain/ports/repository"
	"tryonjewel-server/internal/infra/metrics"
)

// Janitor reaps jobs stuck in a non-terminal state, typically left behind
// by a crashed process between provider call and persistence.
type Janitor struct {
	jobs repository.GenerationJobRepository
	cfg  config.PollerConfig
	log  *zerolog.Logger
}

func NewJanitor(jobs repository.GenerationJobRepository, cfg config.PollerConfig, log *zerolog.Logger) *Janitor {
	return &Janitor{jobs: jobs, cfg: cfg, log: log}
}

func (j *Janitor) Start(ctx context.Context) {
	// Reap at a fraction of the age cutoff; exact cadence is not important.
	interval := j.cfg.JanitorAge / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	j.log.Info().Dur("interval", interval).Dur("age", j.cfg.JanitorAge).Msg("janitor started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info().Msg("janitor stopping")
			return
		case <-ticker.C:
			n, err := j.jobs.FailStale(ctx, j.cfg.JanitorAge, "generation timed out")
			if err != nil {
				j.log.Error().Err(err).Msg("reap stale jobs")
				continue
			}
			if n > 0 {
				metrics.AddStaleReaped(n)
				j.log.Warn().Int64("count", n).Msg("stale jobs failed")
			}
		}
	}
}
