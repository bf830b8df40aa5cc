package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/repository"
)

var _ repository.GenerationJobRepository = (*generationJobRepo)(nil)

type generationJobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewGenerationJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *generationJobRepo {
	return &generationJobRepo{pool: pool, tm: tm}
}

const jobColumns = `id, user_id, kind, status, primary_path, additional_paths, params,
prompt, operation_id, result_paths, result_urls, error_message, created_at, updated_at`

func (r *generationJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.GenerationJob) error {
	if job.ID == "" {
		job.ID = model.NewID()
	}
	job.UpdatedAt = time.Now().UTC()

	params, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("marshal job params: %w", err)
	}

	const q = `
INSERT INTO generation_jobs (` + jobColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  params = EXCLUDED.params,
  prompt = EXCLUDED.prompt,
  operation_id = EXCLUDED.operation_id,
  result_paths = EXCLUDED.result_paths,
  result_urls = EXCLUDED.result_urls,
  error_message = EXCLUDED.error_message,
  updated_at = EXCLUDED.updated_at;`

	_, err = execSQL(ctx, r.pool, tx, q,
		job.ID, job.UserID, string(job.Kind), string(job.Status), job.PrimaryPath,
		job.AdditionalPaths, params, job.Prompt, job.OperationID,
		job.ResultPaths, job.ResultURLs, job.ErrorMessage, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *generationJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.GenerationJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM generation_jobs WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *generationJobRepo) FindByIDForUser(ctx context.Context, tx repository.Tx, id, userID string) (*model.GenerationJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM generation_jobs WHERE id = $1 AND user_id = $2;`
	row, err := pickRow(ctx, r.pool, tx, q, id, userID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *generationJobRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.GenerationJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM generation_jobs
WHERE user_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3;`
	rows, err := pickRows(ctx, r.pool, tx, q, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.GenerationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *generationJobRepo) Delete(ctx context.Context, tx repository.Tx, id, userID string) error {
	const q = `DELETE FROM generation_jobs WHERE id = $1 AND user_id = $2;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimProcessing picks the oldest job of the given kind sitting in
// processing and bumps its updated_at inside one transaction, so concurrent
// pollers never claim the same row twice within a poll interval.
func (r *generationJobRepo) ClaimProcessing(ctx context.Context, kind model.JobKind) (*model.GenerationJob, error) {
	var job *model.GenerationJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const q = `
SELECT ` + jobColumns + ` FROM generation_jobs
WHERE kind = $1 AND status = 'processing'
ORDER BY updated_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, r.pool, tx, q, string(kind))
		if err != nil {
			return err
		}
		claimed, err := scanJob(row)
		if err != nil {
			return err
		}

		const touch = `UPDATE generation_jobs SET updated_at = now() WHERE id = $1;`
		if _, err := execSQL(ctx, r.pool, tx, touch, claimed.ID); err != nil {
			return err
		}
		job = claimed
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

func (r *generationJobRepo) FailStale(ctx context.Context, maxAge time.Duration, message string) (int64, error) {
	const q = `
UPDATE generation_jobs
SET status = 'error', error_message = $1, updated_at = now()
WHERE status NOT IN ('completed', 'error') AND updated_at < now() - ($2 * interval '1 second');`

	tag, err := execSQL(ctx, r.pool, nil, q, message, maxAge.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (*model.GenerationJob, error) {
	var (
		job          model.GenerationJob
		kind, status string
		params       []byte
	)
	err := row.Scan(
		&job.ID, &job.UserID, &kind, &status, &job.PrimaryPath,
		&job.AdditionalPaths, &params, &job.Prompt, &job.OperationID,
		&job.ResultPaths, &job.ResultURLs, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, scanErr(err)
	}
	job.Kind = model.JobKind(kind)
	job.Status = model.JobStatus(status)
	if len(params) > 0 {
		if err := json.Unmarshal(params, &job.Params); err != nil {
			return nil, fmt.Errorf("unmarshal job params: %w", err)
		}
	}
	return &job, nil
}
