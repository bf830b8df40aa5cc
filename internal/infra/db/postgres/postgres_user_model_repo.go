package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/repository"
)

var _ repository.UserModelRepository = (*userModelRepo)(nil)

type userModelRepo struct {
	pool *pgxpool.Pool
}

func NewUserModelRepo(pool *pgxpool.Pool) *userModelRepo {
	return &userModelRepo{pool: pool}
}

const userModelColumns = `id, user_id, name, gender, skin_tone, hair_style, hair_color, age, attributes, preview_path, created_at`

func (r *userModelRepo) Save(ctx context.Context, tx repository.Tx, m *model.UserModel) error {
	if m.ID == "" {
		m.ID = model.NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	const q = `
INSERT INTO user_models (` + userModelColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  gender = EXCLUDED.gender,
  skin_tone = EXCLUDED.skin_tone,
  hair_style = EXCLUDED.hair_style,
  hair_color = EXCLUDED.hair_color,
  age = EXCLUDED.age,
  attributes = EXCLUDED.attributes,
  preview_path = EXCLUDED.preview_path;`
	_, err := execSQL(ctx, r.pool, tx, q,
		m.ID, m.UserID, m.Name, m.Gender, m.SkinTone, m.HairStyle, m.HairColor,
		m.Age, m.Attributes, m.PreviewPath, m.CreatedAt)
	return err
}

func (r *userModelRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserModel, error) {
	const q = `SELECT ` + userModelColumns + ` FROM user_models WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUserModel(row)
}

func (r *userModelRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.UserModel, error) {
	const q = `SELECT ` + userModelColumns + ` FROM user_models
WHERE user_id = $1 OR user_id = '' ORDER BY created_at DESC;`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.UserModel
	for rows.Next() {
		m, err := scanUserModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *userModelRepo) Delete(ctx context.Context, tx repository.Tx, id, userID string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM user_models WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUserModel(row pgx.Row) (*model.UserModel, error) {
	var m model.UserModel
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Gender, &m.SkinTone, &m.HairStyle,
		&m.HairColor, &m.Age, &m.Attributes, &m.PreviewPath, &m.CreatedAt)
	if err != nil {
		return nil, scanErr(err)
	}
	return &m, nil
}
