package repository

import (
	"context"

	"tryonjewel-server/internal/domain/model"
)

type SceneRepository interface {
	Save(ctx context.Context, tx Tx, scene *model.Scene) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Scene, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Scene, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
