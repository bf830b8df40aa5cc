package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrQuotaExceeded      = errors.New("generation quota exceeded")
	ErrRateLimited        = errors.New("rate limited by provider")
	ErrProviderFailure    = errors.New("generation provider failure")
	ErrInvalidTransition  = errors.New("invalid job status transition")
	ErrPollInFlight       = errors.New("a status poll is already in flight for this job")
	ErrPollDeadline       = errors.New("generation timed out")
	ErrInvalidExecContext = errors.New("invalid exec context: must be pgx.Tx, *pgxpool.Conn, *pgxpool.Pool or nil")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrStorageWrite       = errors.New("failed to write object to storage")
)
