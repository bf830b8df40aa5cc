package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tryonjewel-server/internal/config"
	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/repository"
	"tryonjewel-server/internal/usecase"
)

// VideoPoller drives submitted video operations to completion without the
// client having to ask. It claims one processing job per tick and hands it
// to the shared status flow; explicit client checks and poller ticks both
// funnel through the same per-job lock, so they never double-poll.
//
// Backoff is per job: each inconclusive poll pushes the next attempt out by
// BackoffBase doubling up to BackoffCap. The hard stop (MaxElapsed) lives in
// the status flow, which fails the job with "generation timed out".
type VideoPoller struct {
	jobs   repository.GenerationJobRepository
	status *usecase.StatusService
	cfg    config.PollerConfig
	log    *zerolog.Logger

	mu       sync.Mutex
	attempts map[string]int
	nextAt   map[string]time.Time
}

func NewVideoPoller(jobs repository.GenerationJobRepository, status *usecase.StatusService, cfg config.PollerConfig, log *zerolog.Logger) *VideoPoller {
	return &VideoPoller{
		jobs:     jobs,
		status:   status,
		cfg:      cfg,
		log:      log,
		attempts: make(map[string]int),
		nextAt:   make(map[string]time.Time),
	}
}

// Start runs the claim loop until ctx is cancelled. Run it in a goroutine.
func (p *VideoPoller) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Dur("interval", p.cfg.Interval).Msg("video poller started")
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("video poller stopping")
			return
		case <-ticker.C:
			p.purgeStale(time.Now())
			_ = pool.Submit(func(ctx context.Context) error {
				p.pollOne(ctx)
				return nil
			})
		}
	}
}

func (p *VideoPoller) pollOne(ctx context.Context) {
	job, err := p.jobs.ClaimProcessing(ctx, model.JobKindVideo)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			p.log.Error().Err(err).Msg("claim video job")
		}
		return
	}
	if !p.due(job.ID) {
		return
	}

	err = p.status.ProcessVideoJob(ctx, job)
	switch {
	case err == nil && job.Status.Terminal():
		p.forget(job.ID)
	case err == nil:
		p.scheduleNext(job.ID)
	case errors.Is(err, domain.ErrPollDeadline), errors.Is(err, domain.ErrProviderFailure):
		p.forget(job.ID)
	default:
		p.log.Warn().Err(err).Str("job_id", job.ID).Msg("video poll attempt failed")
		p.scheduleNext(job.ID)
	}
}

// due reports whether the job's backoff window has elapsed.
func (p *VideoPoller) due(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, ok := p.nextAt[jobID]
	return !ok || time.Now().After(next)
}

// scheduleNext schedules the next attempt: base * 2^attempts, capped.
func (p *VideoPoller) scheduleNext(jobID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.attempts[jobID]
	delay := p.cfg.BackoffBase << uint(n)
	if delay > p.cfg.BackoffCap || delay <= 0 {
		delay = p.cfg.BackoffCap
	}
	p.attempts[jobID] = n + 1
	p.nextAt[jobID] = time.Now().Add(delay)
}

func (p *VideoPoller) forget(jobID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.attempts, jobID)
	delete(p.nextAt, jobID)
}

// purgeStale drops backoff state for jobs the claim loop stopped seeing,
// e.g. ones finished through an explicit status check. A live job's nextAt
// is never further in the past than the backoff cap, so anything older than
// MaxElapsed is gone for good.
func (p *VideoPoller) purgeStale(now time.Time) {
	cutoff := now.Add(-p.cfg.MaxElapsed)
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, next := range p.nextAt {
		if next.Before(cutoff) {
			delete(p.attempts, id)
			delete(p.nextAt, id)
		}
	}
}
