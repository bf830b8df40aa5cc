package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, email, daily_quota, registered_at, last_active_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  daily_quota = EXCLUDED.daily_quota,
  last_active_at = EXCLUDED.last_active_at;`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Email, u.DailyQuota, u.RegisteredAt, u.LastActiveAt)
	return err
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT id, email, daily_quota, registered_at, last_active_at FROM users WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	const q = `SELECT id, email, daily_quota, registered_at, last_active_at FROM users WHERE email = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT count(*) FROM users;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, scanErr(err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.DailyQuota, &u.RegisteredAt, &u.LastActiveAt); err != nil {
		return nil, scanErr(err)
	}
	return &u, nil
}
