package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/adapter"
	"tryonjewel-server/internal/domain/ports/repository"
	ports "tryonjewel-server/internal/domain/ports/usecase"
	"tryonjewel-server/internal/infra/logging"
	"tryonjewel-server/internal/infra/metrics"
)

var (
	_ ports.GenerationUseCase = (*GenerationService)(nil)
	_ ports.StatusUseCase     = (*StatusService)(nil)
	_ ports.UploadUseCase     = (*UploadService)(nil)
	_ ports.AssetUseCase      = (*AssetService)(nil)
	_ ports.CatalogUseCase    = (*CatalogService)(nil)
	_ ports.JobUseCase        = (*JobService)(nil)
)

// QuotaConsumer counts a user's generations for the current day and reports
// whether the limit still holds.
type QuotaConsumer interface {
	Consume(ctx context.Context, userID string, limit int) (bool, error)
}

// GenerationService implements both generation flows. Image jobs run to a
// terminal state inside the request; video jobs return in processing with a
// provider operation handle attached.
type GenerationService struct {
	jobs       repository.GenerationJobRepository
	scenes     repository.SceneRepository
	characters repository.UserModelRepository
	storage    adapter.ObjectStorage
	imageGens  map[string]adapter.ImageGenerator
	defaultGen string
	videoGen   adapter.VideoGenerator
	quota      QuotaConsumer
	users      repository.UserRepository
	dailyLimit int
	events     adapter.JobEventPublisher
	log        *zerolog.Logger
}

func NewGenerationService(
	jobs repository.GenerationJobRepository,
	scenes repository.SceneRepository,
	characters repository.UserModelRepository,
	storage adapter.ObjectStorage,
	imageGens []adapter.ImageGenerator,
	defaultGen string,
	videoGen adapter.VideoGenerator,
	quota QuotaConsumer,
	users repository.UserRepository,
	dailyLimit int,
	events adapter.JobEventPublisher,
	log *zerolog.Logger,
) *GenerationService {
	byName := make(map[string]adapter.ImageGenerator, len(imageGens))
	for _, g := range imageGens {
		byName[g.Name()] = g
	}
	return &GenerationService{
		jobs:       jobs,
		scenes:     scenes,
		characters: characters,
		storage:    storage,
		imageGens:  byName,
		defaultGen: defaultGen,
		videoGen:   videoGen,
		quota:      quota,
		users:      users,
		dailyLimit: dailyLimit,
		events:     events,
		log:        log,
	}
}

// SubmitImage runs the synchronous flow: validate, create the job record,
// compose the prompt, call the provider, persist results. Parameter
// validation happens before any quota or provider use, so a malformed
// request never creates a job and never leaves the process.
func (s *GenerationService) SubmitImage(ctx context.Context, userID string, req ports.SubmitRequest) (*model.GenerationJob, error) {
	defer logging.TraceDuration(s.log, "GenerationUC.SubmitImage")()
	job, err := model.NewGenerationJob(userID, model.JobKindImage, req.PrimaryAssetPath, req.AdditionalAssetPaths, req.Params)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithJobID(ctx, job.ID)
	if err := s.consumeQuota(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, nil, job); err != nil {
		return nil, err
	}
	s.publish(job)

	if err := s.advance(ctx, job, model.JobStatusAnalyzing); err != nil {
		return job, err
	}
	scene, character, err := s.loadReferences(ctx, req.Params)
	if err != nil {
		return job, s.fail(ctx, job, err)
	}
	prompt, negative := ComposePrompt(req.Params, scene, character)
	job.Prompt = prompt

	inputs, err := s.loadInputImages(ctx, job)
	if err != nil {
		return job, s.fail(ctx, job, err)
	}
	if err := s.advance(ctx, job, model.JobStatusGenerating); err != nil {
		return job, err
	}

	gen, ok := s.imageGens[s.defaultGen]
	if !ok {
		return job, s.fail(ctx, job, fmt.Errorf("%w: no image provider %q", domain.ErrProviderFailure, s.defaultGen))
	}
	assets, err := gen.GenerateImages(ctx, adapter.ImageRequest{
		Prompt:      prompt,
		Negative:    negative,
		Images:      inputs,
		Count:       req.Params.PackageType.OutputCount(),
		AspectRatio: req.Params.AspectRatio,
		JobID:       job.ID,
	})
	if err != nil {
		return job, s.fail(ctx, job, err)
	}
	if len(assets) == 0 {
		return job, s.fail(ctx, job, fmt.Errorf("%w: provider returned no images", domain.ErrProviderFailure))
	}

	paths, urls := s.persistResults(ctx, job, assets)
	if len(paths) == 0 && len(urls) == 0 {
		return job, s.fail(ctx, job, fmt.Errorf("%w: could not persist any generated image", domain.ErrStorageWrite))
	}
	if err := job.MarkCompleted(paths, urls); err != nil {
		return job, s.fail(ctx, job, err)
	}
	if err := s.jobs.Save(ctx, nil, job); err != nil {
		return job, err
	}
	s.publish(job)
	metrics.IncJobProcessed(string(job.Kind), string(job.Status))
	s.log.Info().Str("job_id", job.ID).Int("results", len(paths)+len(urls)).Msg("image job completed")
	return job, nil
}

// SubmitVideo creates the job, submits the provider operation and hands
// back a processing job; the poller (or an explicit status check) finishes
// it. The job stays pending until the provider accepts the operation, so a
// rejected submission fails without ever reaching processing.
func (s *GenerationService) SubmitVideo(ctx context.Context, userID string, req ports.SubmitRequest) (*model.GenerationJob, error) {
	defer logging.TraceDuration(s.log, "GenerationUC.SubmitVideo")()
	job, err := model.NewGenerationJob(userID, model.JobKindVideo, req.PrimaryAssetPath, req.AdditionalAssetPaths, req.Params)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithJobID(ctx, job.ID)
	if err := s.consumeQuota(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, nil, job); err != nil {
		return nil, err
	}
	s.publish(job)

	scene, character, err := s.loadReferences(ctx, req.Params)
	if err != nil {
		return job, s.fail(ctx, job, err)
	}
	prompt, negative := ComposePrompt(req.Params, scene, character)
	job.Prompt = prompt

	primary, err := s.loadObject(ctx, job.PrimaryPath)
	if err != nil {
		return job, s.fail(ctx, job, err)
	}
	opID, err := s.videoGen.SubmitVideo(ctx, adapter.VideoRequest{
		Prompt:      prompt,
		Negative:    negative,
		Image:       primary,
		AspectRatio: req.Params.AspectRatio,
		JobID:       job.ID,
	})
	if err != nil {
		return job, s.fail(ctx, job, err)
	}
	job.OperationID = opID
	if err := s.advance(ctx, job, model.JobStatusProcessing); err != nil {
		return job, err
	}
	s.log.Info().Str("job_id", job.ID).Str("operation_id", opID).Msg("video operation submitted")
	return job, nil
}

// consumeQuota counts this generation against the user's daily allowance.
// A user record with its own quota overrides the configured default; users
// without a record get the default.
func (s *GenerationService) consumeQuota(ctx context.Context, userID string) error {
	limit := s.dailyLimit
	if s.users != nil {
		if u, err := s.users.FindByID(ctx, nil, userID); err == nil && u.DailyQuota > 0 {
			limit = u.DailyQuota
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	ok, err := s.quota.Consume(ctx, userID, limit)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: daily generation limit of %d reached", domain.ErrQuotaExceeded, limit)
	}
	return nil
}

func (s *GenerationService) loadReferences(ctx context.Context, params model.JobParams) (*model.Scene, *model.UserModel, error) {
	var scene *model.Scene
	var character *model.UserModel
	var err error
	if params.SceneID != "" {
		if scene, err = s.scenes.FindByID(ctx, nil, params.SceneID); err != nil {
			return nil, nil, fmt.Errorf("scene %s: %w", params.SceneID, err)
		}
	}
	if params.ModelID != "" {
		if character, err = s.characters.FindByID(ctx, nil, params.ModelID); err != nil {
			return nil, nil, fmt.Errorf("model %s: %w", params.ModelID, err)
		}
	}
	return scene, character, nil
}

// loadInputImages pulls the primary, additional and style-reference objects
// out of storage so the provider receives inline bytes.
func (s *GenerationService) loadInputImages(ctx context.Context, job *model.GenerationJob) ([]model.GeneratedAsset, error) {
	paths := append([]string{job.PrimaryPath}, job.AdditionalPaths...)
	if p := job.Params.StyleReferencePath; p != "" {
		paths = append(paths, p)
	}
	out := make([]model.GeneratedAsset, 0, len(paths))
	for _, p := range paths {
		a, err := s.loadObject(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *GenerationService) loadObject(ctx context.Context, path string) (*model.GeneratedAsset, error) {
	rc, err := s.storage.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &model.GeneratedAsset{ContentType: contentTypeForPath(path), Data: data}, nil
}

// persistResults writes provider outputs to storage. A failed write falls
// back to the provider-hosted URL when one exists, so a storage hiccup
// degrades the job instead of failing it.
func (s *GenerationService) persistResults(ctx context.Context, job *model.GenerationJob, assets []model.GeneratedAsset) (paths, urls []string) {
	for i, a := range assets {
		if len(a.Data) == 0 {
			if a.URL != "" {
				urls = append(urls, a.URL)
			}
			continue
		}
		path := ResultImagePath(job.ID, i, a.ContentType)
		if err := s.storage.Put(ctx, path, bytes.NewReader(a.Data), int64(len(a.Data)), a.ContentType); err != nil {
			s.log.Warn().Err(err).Str("job_id", job.ID).Str("path", path).Msg("result write failed, keeping provider url")
			if a.URL != "" {
				urls = append(urls, a.URL)
			}
			continue
		}
		paths = append(paths, path)
	}
	return paths, urls
}

func (s *GenerationService) advance(ctx context.Context, job *model.GenerationJob, next model.JobStatus) error {
	if err := job.Transition(next); err != nil {
		return err
	}
	if err := s.jobs.Save(ctx, nil, job); err != nil {
		return err
	}
	s.publish(job)
	return nil
}

// fail marks the job error with the cause's message, persists it and
// returns the original error so the transport layer can map its class.
func (s *GenerationService) fail(ctx context.Context, job *model.GenerationJob, cause error) error {
	if err := job.MarkError(cause.Error()); err == nil {
		if saveErr := s.jobs.Save(ctx, nil, job); saveErr != nil {
			s.log.Error().Err(saveErr).Str("job_id", job.ID).Msg("persist failed job")
		}
		s.publish(job)
		metrics.IncJobProcessed(string(job.Kind), string(model.JobStatusError))
	}
	logging.With(ctx, s.log).Warn().Err(cause).Str("job_id", job.ID).Msg("generation failed")
	return cause
}

func (s *GenerationService) publish(job *model.GenerationJob) {
	if s.events != nil {
		s.events.PublishJobUpdate(job)
	}
}

// ResultImagePath is where the i-th generated image of a job lives.
func ResultImagePath(jobID string, i int, contentType string) string {
	return fmt.Sprintf("generated/images/%s/image-%02d%s", jobID, i+1, extForContentType(contentType))
}

// ResultVideoPath is where a job's generated video lives.
func ResultVideoPath(jobID, contentType string) string {
	return "generated/videos/" + jobID + "/video" + extForContentType(contentType)
}

func extForContentType(ct string) string {
	switch {
	case strings.HasPrefix(ct, "video/"), ct == "":
		return ".mp4"
	case ct == "image/jpeg":
		return ".jpg"
	case ct == "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func contentTypeForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".webp"):
		return "image/webp"
	case strings.HasSuffix(path, ".mp4"):
		return "video/mp4"
	default:
		return "image/jpeg"
	}
}
