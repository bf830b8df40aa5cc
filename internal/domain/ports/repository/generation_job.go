package repository

import (
	"context"
	"time"

	"tryonjewel-server/internal/domain/model"
)

type GenerationJobRepository interface {
	Save(ctx context.Context, tx Tx, job *model.GenerationJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.GenerationJob, error)
	FindByIDForUser(ctx context.Context, tx Tx, id, userID string) (*model.GenerationJob, error)
	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.GenerationJob, error)
	Delete(ctx context.Context, tx Tx, id, userID string) error
	// ClaimProcessing picks one video job sitting in processing and returns
	// it, or domain.ErrNotFound. Claiming is transactional (SKIP LOCKED) so
	// concurrent pollers never receive the same row.
	ClaimProcessing(ctx context.Context, kind model.JobKind) (*model.GenerationJob, error)
	// FailStale marks jobs non-terminal for longer than maxAge as error and
	// returns how many rows were touched.
	FailStale(ctx context.Context, maxAge time.Duration, message string) (int64, error)
}
