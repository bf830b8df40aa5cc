package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/adapter"
)

var (
	_ adapter.ImageGenerator = (*NoopAdapter)(nil)
	_ adapter.VideoGenerator = (*NoopAdapter)(nil)
)

// tiny valid 1x1 PNG, enough for dev flows that expect real bytes
var noopPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// NoopAdapter is a local/dev stand-in: it returns synthetic assets instead
// of calling a provider, and completes video operations after two polls.
type NoopAdapter struct {
	mu    sync.Mutex
	ops   int64
	polls map[string]int
}

func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{polls: make(map[string]int)}
}

func (n *NoopAdapter) Name() string { return "noop" }

func (n *NoopAdapter) GenerateImages(ctx context.Context, req adapter.ImageRequest) ([]model.GeneratedAsset, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	count := req.Count
	if count <= 0 {
		count = 1
	}
	out := make([]model.GeneratedAsset, count)
	for i := range out {
		out[i] = model.GeneratedAsset{ContentType: "image/png", Data: noopPNG, Width: 1, Height: 1}
	}
	return out, nil
}

func (n *NoopAdapter) SubmitVideo(ctx context.Context, req adapter.VideoRequest) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ops++
	id := fmt.Sprintf("noop-op-%d", n.ops)
	n.polls[id] = 0
	return id, nil
}

func (n *NoopAdapter) PollVideo(ctx context.Context, operationID string) (adapter.VideoOperation, error) {
	n.mu.Lock()
	n.polls[operationID]++
	count := n.polls[operationID]
	n.mu.Unlock()
	if count < 3 {
		return adapter.VideoOperation{ID: operationID, Done: false}, nil
	}
	return adapter.VideoOperation{
		ID:   operationID,
		Done: true,
		Result: &model.GeneratedAsset{
			ContentType: "video/mp4",
			Data:        []byte("noop-video"),
		},
	}, nil
}
