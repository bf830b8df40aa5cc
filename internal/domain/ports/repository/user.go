package repository

import (
	"context"

	"tryonjewel-server/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
