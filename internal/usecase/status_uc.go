package usecase

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/adapter"
	"tryonjewel-server/internal/domain/ports/repository"
	ports "tryonjewel-server/internal/domain/ports/usecase"
	"tryonjewel-server/internal/infra/metrics"
)

// PollGuard serializes polls per job across processes. TryLock either
// acquires or fails fast with domain.ErrPollInFlight; it never waits.
type PollGuard interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

func pollLockKey(jobID string) string { return "poll_lock:" + jobID }

// StatusService drives async video jobs to a terminal state. Checks are
// idempotent: a terminal job answers from the record without touching the
// provider or storage, and concurrent checks for one job collapse to a
// single provider poll.
type StatusService struct {
	jobs       repository.GenerationJobRepository
	videoGen   adapter.VideoGenerator
	storage    adapter.ObjectStorage
	assets     ports.AssetUseCase
	guard      PollGuard
	events     adapter.JobEventPublisher
	lockTTL    time.Duration
	maxElapsed time.Duration
	log        *zerolog.Logger
}

func NewStatusService(
	jobs repository.GenerationJobRepository,
	videoGen adapter.VideoGenerator,
	storage adapter.ObjectStorage,
	assets ports.AssetUseCase,
	guard PollGuard,
	events adapter.JobEventPublisher,
	lockTTL, maxElapsed time.Duration,
	log *zerolog.Logger,
) *StatusService {
	return &StatusService{
		jobs:       jobs,
		videoGen:   videoGen,
		storage:    storage,
		assets:     assets,
		guard:      guard,
		events:     events,
		lockTTL:    lockTTL,
		maxElapsed: maxElapsed,
		log:        log,
	}
}

func (s *StatusService) CheckVideo(ctx context.Context, jobID, userID string) (ports.StatusResult, error) {
	job, err := s.jobs.FindByIDForUser(ctx, nil, jobID, userID)
	if err != nil {
		return ports.StatusResult{}, err
	}
	if err := s.ProcessVideoJob(ctx, job); err != nil {
		// A job that failed terminally is still a successful status check:
		// the caller reads the error state off the result.
		if !job.Status.Terminal() {
			return s.result(ctx, job), err
		}
	}
	return s.result(ctx, job), nil
}

// ProcessVideoJob advances one video job a single step. It is shared by the
// on-demand status check and the background poller; both observe the same
// lock, so at most one provider poll per job is ever in flight.
func (s *StatusService) ProcessVideoJob(ctx context.Context, job *model.GenerationJob) error {
	if job.Status.Terminal() {
		return nil
	}
	if job.Kind != model.JobKindVideo || job.OperationID == "" {
		return domain.ErrInvalidArgument
	}

	token, err := s.guard.TryLock(ctx, pollLockKey(job.ID), s.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrPollInFlight) {
			metrics.IncPollAttempt("in_flight")
			return nil
		}
		return err
	}
	defer func() {
		if uerr := s.guard.Unlock(ctx, pollLockKey(job.ID), token); uerr != nil {
			s.log.Warn().Err(uerr).Str("job_id", job.ID).Msg("poll lock release failed")
		}
	}()

	op, err := s.videoGen.PollVideo(ctx, job.OperationID)
	if err != nil {
		metrics.IncPollAttempt("error")
		if s.expired(job) {
			return s.fail(ctx, job, domain.ErrPollDeadline, "generation timed out")
		}
		return err
	}
	if !op.Done {
		metrics.IncPollAttempt("pending")
		if s.expired(job) {
			return s.fail(ctx, job, domain.ErrPollDeadline, "generation timed out")
		}
		return nil
	}
	if op.Error != "" {
		metrics.IncPollAttempt("failed")
		return s.fail(ctx, job, domain.ErrProviderFailure, op.Error)
	}
	metrics.IncPollAttempt("done")
	return s.complete(ctx, job, op.Result)
}

// complete persists the finished video with a single storage write, falling
// back to the provider URL when the write fails or the provider returned
// only a URL.
func (s *StatusService) complete(ctx context.Context, job *model.GenerationJob, result *model.GeneratedAsset) error {
	if result == nil || (len(result.Data) == 0 && result.URL == "") {
		return s.fail(ctx, job, domain.ErrProviderFailure, "provider reported done without a result")
	}

	var paths, urls []string
	if len(result.Data) > 0 {
		path := ResultVideoPath(job.ID, result.ContentType)
		if err := s.storage.Put(ctx, path, bytes.NewReader(result.Data), int64(len(result.Data)), result.ContentType); err != nil {
			s.log.Warn().Err(err).Str("job_id", job.ID).Msg("video write failed, keeping provider url")
			if result.URL == "" {
				return s.fail(ctx, job, domain.ErrStorageWrite, "could not persist generated video")
			}
			urls = append(urls, result.URL)
		} else {
			paths = append(paths, path)
		}
	} else {
		urls = append(urls, result.URL)
	}

	if err := job.MarkCompleted(paths, urls); err != nil {
		return err
	}
	if err := s.jobs.Save(ctx, nil, job); err != nil {
		return err
	}
	if s.events != nil {
		s.events.PublishJobUpdate(job)
	}
	metrics.IncJobProcessed(string(job.Kind), string(job.Status))
	s.log.Info().Str("job_id", job.ID).Msg("video job completed")
	return nil
}

func (s *StatusService) fail(ctx context.Context, job *model.GenerationJob, class error, msg string) error {
	if err := job.MarkError(msg); err != nil {
		return err
	}
	if err := s.jobs.Save(ctx, nil, job); err != nil {
		return err
	}
	if s.events != nil {
		s.events.PublishJobUpdate(job)
	}
	metrics.IncJobProcessed(string(job.Kind), string(model.JobStatusError))
	s.log.Warn().Str("job_id", job.ID).Str("reason", msg).Msg("video job failed")
	return class
}

func (s *StatusService) expired(job *model.GenerationJob) bool {
	return s.maxElapsed > 0 && time.Since(job.CreatedAt) > s.maxElapsed
}

func (s *StatusService) result(ctx context.Context, job *model.GenerationJob) ports.StatusResult {
	res := ports.StatusResult{
		JobID:        job.ID,
		Status:       job.Status,
		ErrorMessage: job.ErrorMessage,
	}
	if job.Status == model.JobStatusCompleted {
		res.ResultURLs = s.assets.ResolveAll(ctx, job.ResultPaths, job.ResultURLs)
		if len(res.ResultURLs) > 0 {
			res.ResultURL = res.ResultURLs[0]
		}
	}
	return res
}
