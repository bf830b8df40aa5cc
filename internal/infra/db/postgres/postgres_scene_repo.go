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

var _ repository.SceneRepository = (*sceneRepo)(nil)

type sceneRepo struct {
	pool *pgxpool.Pool
}

func NewSceneRepo(pool *pgxpool.Pool) *sceneRepo {
	return &sceneRepo{pool: pool}
}

func (r *sceneRepo) Save(ctx context.Context, tx repository.Tx, scene *model.Scene) error {
	if scene.ID == "" {
		scene.ID = model.NewID()
	}
	if scene.CreatedAt.IsZero() {
		scene.CreatedAt = time.Now().UTC()
	}
	const q = `
INSERT INTO scenes (id, name, prompt, preview_path, seeded, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  prompt = EXCLUDED.prompt,
  preview_path = EXCLUDED.preview_path;`
	_, err := execSQL(ctx, r.pool, tx, q,
		scene.ID, scene.Name, scene.Prompt, scene.PreviewPath, scene.Seeded, scene.CreatedAt)
	return err
}

func (r *sceneRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Scene, error) {
	const q = `SELECT id, name, prompt, preview_path, seeded, created_at FROM scenes WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanScene(row)
}

func (r *sceneRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Scene, error) {
	const q = `SELECT id, name, prompt, preview_path, seeded, created_at FROM scenes ORDER BY name;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Scene
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sceneRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM scenes WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanScene(row pgx.Row) (*model.Scene, error) {
	var s model.Scene
	if err := row.Scan(&s.ID, &s.Name, &s.Prompt, &s.PreviewPath, &s.Seeded, &s.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	return &s, nil
}
