package adapter

import (
	"context"

	"tryonjewel-server/internal/domain/model"
)

// ImageRequest is a fully composed synchronous image-generation request.
// The prompt is already deterministic; adapters must not add free text.
type ImageRequest struct {
	Prompt      string
	Negative    string
	Images      []model.GeneratedAsset
	Count       int
	AspectRatio string
	JobID       string
}

// ImageGenerator is the synchronous provider port. The provider returns
// inline results; the caller persists them.
type ImageGenerator interface {
	Name() string
	GenerateImages(ctx context.Context, req ImageRequest) ([]model.GeneratedAsset, error)
}

// VideoRequest is an asynchronous video-generation request.
type VideoRequest struct {
	Prompt      string
	Negative    string
	Image       *model.GeneratedAsset
	AspectRatio string
	JobID       string
}

// VideoOperation is the observable state of a provider long-running
// operation. When Done, exactly one of Result.Data / Result.URL is set.
type VideoOperation struct {
	ID     string
	Done   bool
	Result *model.GeneratedAsset
	Error  string
}

// VideoGenerator is the asynchronous provider port: submit returns an
// opaque operation handle; Poll re-queries it until done.
type VideoGenerator interface {
	Name() string
	SubmitVideo(ctx context.Context, req VideoRequest) (operationID string, err error)
	PollVideo(ctx context.Context, operationID string) (VideoOperation, error)
}
