package repository

import (
	"context"

	"tryonjewel-server/internal/domain/model"
)

type UserModelRepository interface {
	Save(ctx context.Context, tx Tx, m *model.UserModel) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.UserModel, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.UserModel, error)
	Delete(ctx context.Context, tx Tx, id, userID string) error
}
