package usecase

import (
	"context"
	"io"

	"tryonjewel-server/internal/domain/model"
)

// SubmitRequest is the generation invocation body: a primary asset path,
// any additional asset paths, and the user-selected parameter set.
type SubmitRequest struct {
	PrimaryAssetPath     string          `json:"primaryAssetPath"`
	AdditionalAssetPaths []string        `json:"additionalAssetPaths,omitempty"`
	Params               model.JobParams `json:"params"`
}

// StatusResult is what a status check returns to the caller.
type StatusResult struct {
	JobID        string          `json:"jobId"`
	Status       model.JobStatus `json:"status"`
	ResultURL    string          `json:"resultUrl,omitempty"`
	ResultURLs   []string        `json:"resultUrls,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// GenerationUseCase creates jobs and runs the synchronous image flow /
// asynchronous video submission.
type GenerationUseCase interface {
	SubmitImage(ctx context.Context, userID string, req SubmitRequest) (*model.GenerationJob, error)
	SubmitVideo(ctx context.Context, userID string, req SubmitRequest) (*model.GenerationJob, error)
}

// StatusUseCase drives async jobs to completion. CheckVideo is idempotent:
// a terminal job short-circuits without touching provider or storage.
type StatusUseCase interface {
	CheckVideo(ctx context.Context, jobID, userID string) (StatusResult, error)
}

// UploadUseCase ingests a source image: validates, compresses and writes it
// to a user-scoped storage path.
type UploadUseCase interface {
	Upload(ctx context.Context, userID, filename, contentType string, r io.Reader, size int64) (*model.SourceAsset, error)
}

// AssetUseCase resolves storage paths to time-limited access URLs through
// the signed-URL cache.
type AssetUseCase interface {
	ResolveURL(ctx context.Context, path string) (string, error)
	// ResolveAll signs every path and appends provider-side URLs as-is;
	// unsignable paths are skipped.
	ResolveAll(ctx context.Context, paths, urls []string) []string
}
