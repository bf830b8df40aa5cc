package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tryonjewel-server/internal/config"
	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	ports "tryonjewel-server/internal/domain/ports/usecase"
)

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			JWTSecret:  "test-secret",
			JWTTTL:     time.Hour,
			RateLimit:  100,
			RateWindow: time.Minute,
		},
		Upload:  config.UploadConfig{MaxBytes: 10 << 20},
		Runtime: config.RuntimeConfig{Dev: true},
	}
}

func newTestServer(t *testing.T, deps ServerDeps) (*Server, string) {
	t.Helper()
	cfg := testConfig()
	if deps.Auth == nil {
		deps.Auth = NewAuthManager(cfg.API.JWTSecret, cfg.API.JWTTTL)
	}
	if deps.Limiter == nil {
		deps.Limiter = allowAllLimiter{}
	}
	log := zerolog.Nop()
	srv := NewServer(cfg, deps, &log)
	token, err := deps.Auth.Mint("u1")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return srv, token
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func completedJob(userID string) *model.GenerationJob {
	job, _ := model.NewGenerationJob(userID, model.JobKindImage, "users/"+userID+"/uploads/ring.jpg", nil, model.JobParams{
		PackageType: model.PackageBasic,
		ProductType: "ring",
	})
	job.Transition(model.JobStatusGenerating)
	job.MarkCompleted([]string{"generated/images/" + job.ID + "/image-01.png"}, nil)
	return job
}

func TestGenerateImage_RequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, ServerDeps{
		GenUC: &mockGenUC{},
	})
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/generate-image", "", ports.SubmitRequest{})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
}

func TestGenerateImage_ReturnsCreatedJob(t *testing.T) {
	job := completedJob("u1")
	srv, token := newTestServer(t, ServerDeps{
		GenUC: &mockGenUC{
			SubmitImageFunc: func(ctx context.Context, userID string, req ports.SubmitRequest) (*model.GenerationJob, error) {
				if userID != "u1" {
					t.Errorf("userID = %q", userID)
				}
				return job, nil
			},
		},
		AssetUC: &mockAssetUC{},
	})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/generate-image", token, ports.SubmitRequest{
		PrimaryAssetPath: "users/u1/uploads/ring.jpg",
		Params:           model.JobParams{PackageType: model.PackageBasic, ProductType: "ring"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body=%s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != model.JobStatusCompleted || resp.ResultURL == "" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.ImageID != job.ID {
		t.Errorf("imageId = %q, want %q", resp.ImageID, job.ID)
	}
}

func TestGenerateImage_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrInvalidArgument, http.StatusBadRequest},
		{domain.ErrQuotaExceeded, http.StatusPaymentRequired},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrProviderFailure, http.StatusInternalServerError},
		{domain.ErrNotFound, http.StatusNotFound},
	}
	for _, c := range cases {
		c := c
		t.Run(fmt.Sprint(c.code), func(t *testing.T) {
			srv, token := newTestServer(t, ServerDeps{
				GenUC: &mockGenUC{
					SubmitImageFunc: func(context.Context, string, ports.SubmitRequest) (*model.GenerationJob, error) {
						return nil, c.err
					},
				},
			})
			rec := doJSON(t, srv, http.MethodPost, "/api/v1/generate-image", token, ports.SubmitRequest{})
			if rec.Code != c.code {
				t.Fatalf("code = %d, want %d", rec.Code, c.code)
			}
		})
	}
}

func TestCheckVideoStatus_PassesThrough(t *testing.T) {
	srv, token := newTestServer(t, ServerDeps{
		StatusUC: &mockStatusUC{
			CheckVideoFunc: func(ctx context.Context, jobID, userID string) (ports.StatusResult, error) {
				return ports.StatusResult{JobID: jobID, Status: model.JobStatusProcessing}, nil
			},
		},
	})
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/check-video-status", token, map[string]string{"jobId": "j1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"processing"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCheckVideoStatus_RequiresJobID(t *testing.T) {
	srv, token := newTestServer(t, ServerDeps{StatusUC: &mockStatusUC{}})
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/check-video-status", token, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	srv, token := newTestServer(t, ServerDeps{
		JobUC: &mockJobUC{
			ListFunc: func(context.Context, string, int, int) ([]*model.GenerationJob, error) {
				return nil, nil
			},
		},
		Limiter: denyLimiter{},
	})
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/jobs", token, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d, want 429", rec.Code)
	}
}

func TestGetJob_NotFoundForForeignJob(t *testing.T) {
	srv, token := newTestServer(t, ServerDeps{
		JobUC: &mockJobUC{
			GetFunc: func(ctx context.Context, jobID, userID string) (*model.GenerationJob, error) {
				return nil, domain.ErrNotFound
			},
		},
	})
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/jobs/other", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
}

func TestSignedURL_RequiresPath(t *testing.T) {
	srv, token := newTestServer(t, ServerDeps{AssetUC: &mockAssetUC{}})
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/assets/signed-url", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestListScenes(t *testing.T) {
	srv, token := newTestServer(t, ServerDeps{
		CatalogUC: &mockCatalogUC{
			ListScenesFunc: func(context.Context) ([]*model.Scene, error) {
				return []*model.Scene{{ID: "s1", Name: "Marble"}}, nil
			},
		},
	})
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/scenes", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Marble") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealth_NoAuthNeeded(t *testing.T) {
	srv, _ := newTestServer(t, ServerDeps{})
	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestDevToken_MintsParseableToken(t *testing.T) {
	srv, _ := newTestServer(t, ServerDeps{})
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/dev-token", "", map[string]string{"userId": "u42"})
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("token response: %s", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	userID, err := srv.auth.ParseFromRequest(req)
	if err != nil || userID != "u42" {
		t.Fatalf("parse minted token: %q %v", userID, err)
	}
}
