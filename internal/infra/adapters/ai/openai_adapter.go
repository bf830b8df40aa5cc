package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/adapter"
	"tryonjewel-server/internal/infra/metrics"
)

var _ adapter.ImageGenerator = (*OpenAIAdapter)(nil)

// OpenAIAdapter is the alternate synchronous image provider. It has no
// video surface; video jobs always run through Gemini.
type OpenAIAdapter struct {
	client     openai.Client
	model      string
	httpClient *http.Client
}

func NewOpenAIAdapter(apiKey, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	if model == "" {
		model = "gpt-image-1"
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (o *OpenAIAdapter) Name() string { return "openai" }

func (o *OpenAIAdapter) GenerateImages(ctx context.Context, req adapter.ImageRequest) ([]model.GeneratedAsset, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", domain.ErrInvalidArgument)
	}
	prompt := req.Prompt
	if req.Negative != "" {
		prompt += " Avoid: " + req.Negative
	}
	count := req.Count
	if count <= 0 {
		count = 1
	}

	start := time.Now()
	res, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(o.model),
		N:      openai.Int(int64(count)),
	})
	metrics.ObserveProviderCall("openai", "generate_image", int(time.Since(start)/time.Millisecond), err == nil)
	if err != nil {
		return nil, classify("openai", err)
	}

	out := make([]model.GeneratedAsset, 0, count)
	for _, item := range res.Data {
		switch {
		case item.B64JSON != "":
			data, err := base64.StdEncoding.DecodeString(item.B64JSON)
			if err != nil {
				return nil, fmt.Errorf("%w: openai: %v", domain.ErrProviderFailure, err)
			}
			out = append(out, model.GeneratedAsset{ContentType: "image/png", Data: data})
		case item.URL != "":
			data, err := o.fetch(ctx, item.URL)
			if err != nil {
				return nil, err
			}
			out = append(out, model.GeneratedAsset{ContentType: "image/png", Data: data, URL: item.URL})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: openai: response carried no image", domain.ErrProviderFailure)
	}
	metrics.AddProviderImages("openai", len(out))
	return out, nil
}

func (o *OpenAIAdapter) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", domain.ErrProviderFailure, err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: openai fetch: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fromStatus("openai", resp.StatusCode, "image download failed")
	}
	return io.ReadAll(resp.Body)
}
