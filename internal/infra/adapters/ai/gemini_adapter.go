package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"google.golang.org/genai"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/adapter"
	"tryonjewel-server/internal/infra/metrics"
)

var (
	_ adapter.ImageGenerator = (*GeminiAdapter)(nil)
	_ adapter.VideoGenerator = (*GeminiAdapter)(nil)
)

// GeminiAdapter implements both generator ports using the official SDK:
// synchronous image editing via GenerateContent with inline image parts,
// asynchronous video via Veo long-running operations.
type GeminiAdapter struct {
	client     *genai.Client
	apiKey     string
	imageModel string
	videoModel string
	httpClient *http.Client
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, imageModel, videoModel string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{
		client:     c,
		apiKey:     apiKey,
		imageModel: imageModel,
		videoModel: videoModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) GenerateImages(ctx context.Context, req adapter.ImageRequest) ([]model.GeneratedAsset, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", domain.ErrInvalidArgument)
	}
	prompt := req.Prompt
	if req.Negative != "" {
		prompt += " Avoid: " + req.Negative
	}
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.ContentType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}
	out := make([]model.GeneratedAsset, 0, count)
	for i := 0; i < count; i++ {
		start := time.Now()
		resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, contents, cfg)
		metrics.ObserveProviderCall("gemini", "generate_image", int(time.Since(start)/time.Millisecond), err == nil)
		if err != nil {
			return nil, classify("gemini", err)
		}
		assets := extractInlineImages(resp)
		if len(assets) == 0 {
			return nil, fmt.Errorf("%w: gemini: response carried no image", domain.ErrProviderFailure)
		}
		out = append(out, assets...)
		if len(out) >= count {
			out = out[:count]
			break
		}
	}
	metrics.AddProviderImages("gemini", len(out))
	return out, nil
}

func extractInlineImages(resp *genai.GenerateContentResponse) []model.GeneratedAsset {
	var out []model.GeneratedAsset
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			ct := part.InlineData.MIMEType
			if ct == "" {
				ct = "image/png"
			}
			out = append(out, model.GeneratedAsset{ContentType: ct, Data: part.InlineData.Data})
		}
	}
	return out
}

// SubmitVideo starts a Veo operation and returns its handle. The provider
// keeps running regardless of what happens to this process.
func (g *GeminiAdapter) SubmitVideo(ctx context.Context, req adapter.VideoRequest) (string, error) {
	var image *genai.Image
	if req.Image != nil {
		image = &genai.Image{ImageBytes: req.Image.Data, MIMEType: req.Image.ContentType}
	}
	cfg := &genai.GenerateVideosConfig{}
	if req.AspectRatio != "" {
		cfg.AspectRatio = req.AspectRatio
	}
	if req.Negative != "" {
		cfg.NegativePrompt = req.Negative
	}
	start := time.Now()
	op, err := g.client.Models.GenerateVideos(ctx, g.videoModel, req.Prompt, image, cfg)
	metrics.ObserveProviderCall("gemini", "submit_video", int(time.Since(start)/time.Millisecond), err == nil)
	if err != nil {
		return "", classify("gemini", err)
	}
	if op == nil || op.Name == "" {
		return "", fmt.Errorf("%w: gemini: operation without a name", domain.ErrProviderFailure)
	}
	return op.Name, nil
}

// PollVideo re-queries the operation. On done it downloads the result bytes
// so the caller can persist them; the caller guarantees this happens once.
func (g *GeminiAdapter) PollVideo(ctx context.Context, operationID string) (adapter.VideoOperation, error) {
	op, err := g.client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: operationID}, nil)
	if err != nil {
		return adapter.VideoOperation{}, classify("gemini", err)
	}
	result := adapter.VideoOperation{ID: operationID, Done: op.Done}
	if !op.Done {
		return result, nil
	}
	if op.Error != nil {
		result.Error = fmt.Sprintf("%v", op.Error["message"])
		if result.Error == "" || result.Error == "<nil>" {
			result.Error = "video generation failed"
		}
		return result, nil
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		result.Error = "operation finished without a video"
		return result, nil
	}
	video := op.Response.GeneratedVideos[0].Video
	asset := &model.GeneratedAsset{ContentType: video.MIMEType}
	if asset.ContentType == "" {
		asset.ContentType = "video/mp4"
	}
	if len(video.VideoBytes) > 0 {
		asset.Data = video.VideoBytes
	} else if video.URI != "" {
		data, err := g.download(ctx, video.URI)
		if err != nil {
			return adapter.VideoOperation{}, err
		}
		asset.Data = data
		asset.URL = video.URI
	} else {
		result.Error = "operation finished without video content"
		return result, nil
	}
	result.Result = asset
	return result, nil
}

func (g *GeminiAdapter) download(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", domain.ErrProviderFailure, err)
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini download: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fromStatus("gemini", resp.StatusCode, "video download failed")
	}
	return io.ReadAll(resp.Body)
}
