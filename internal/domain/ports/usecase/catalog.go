package usecase

import (
	"context"

	"tryonjewel-server/internal/domain/model"
)

// CatalogUseCase serves the read-mostly reference data that parametrizes a
// generation: scenes and model characters.
type CatalogUseCase interface {
	ListScenes(ctx context.Context) ([]*model.Scene, error)
	ListUserModels(ctx context.Context, userID string) ([]*model.UserModel, error)
	CreateUserModel(ctx context.Context, m *model.UserModel) (*model.UserModel, error)
	DeleteUserModel(ctx context.Context, id, userID string) error
}

// JobUseCase is read/delete access to a user's own jobs.
type JobUseCase interface {
	Get(ctx context.Context, jobID, userID string) (*model.GenerationJob, error)
	List(ctx context.Context, userID string, offset, limit int) ([]*model.GenerationJob, error)
	Delete(ctx context.Context, jobID, userID string) error
}
