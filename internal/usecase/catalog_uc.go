package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/repository"
)

// CatalogService serves scenes and the user's model characters.
type CatalogService struct {
	scenes     repository.SceneRepository
	characters repository.UserModelRepository
	log        *zerolog.Logger
}

func NewCatalogService(scenes repository.SceneRepository, characters repository.UserModelRepository, log *zerolog.Logger) *CatalogService {
	return &CatalogService{scenes: scenes, characters: characters, log: log}
}

func (s *CatalogService) ListScenes(ctx context.Context) ([]*model.Scene, error) {
	return s.scenes.ListAll(ctx, nil)
}

func (s *CatalogService) ListUserModels(ctx context.Context, userID string) ([]*model.UserModel, error) {
	return s.characters.ListByUser(ctx, nil, userID)
}

func (s *CatalogService) CreateUserModel(ctx context.Context, m *model.UserModel) (*model.UserModel, error) {
	if m == nil || m.UserID == "" || m.Name == "" {
		return nil, domain.ErrInvalidArgument
	}
	if m.ID == "" {
		m.ID = model.NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := s.characters.Save(ctx, nil, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CatalogService) DeleteUserModel(ctx context.Context, id, userID string) error {
	return s.characters.Delete(ctx, nil, id, userID)
}

// JobService is read/delete access to a user's own jobs. Ownership is
// enforced in the queries themselves: a foreign job reads as not found.
type JobService struct {
	jobs repository.GenerationJobRepository
}

func NewJobService(jobs repository.GenerationJobRepository) *JobService {
	return &JobService{jobs: jobs}
}

func (s *JobService) Get(ctx context.Context, jobID, userID string) (*model.GenerationJob, error) {
	return s.jobs.FindByIDForUser(ctx, nil, jobID, userID)
}

func (s *JobService) List(ctx context.Context, userID string, offset, limit int) ([]*model.GenerationJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.jobs.ListByUser(ctx, nil, userID, offset, limit)
}

func (s *JobService) Delete(ctx context.Context, jobID, userID string) error {
	return s.jobs.Delete(ctx, nil, jobID, userID)
}
