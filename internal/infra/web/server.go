package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"tryonjewel-server/internal/config"
	ports "tryonjewel-server/internal/domain/ports/usecase"
)

// Limiter is the per-user request throttle.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	genUC     ports.GenerationUseCase
	statusUC  ports.StatusUseCase
	uploadUC  ports.UploadUseCase
	assetUC   ports.AssetUseCase
	catalogUC ports.CatalogUseCase
	jobUC     ports.JobUseCase

	auth    *AuthManager
	limiter Limiter
	wsJobs  http.Handler // websocket job-update endpoint
	ready   func(ctx context.Context) error

	rateLimit      int
	rateWindow     time.Duration
	allowedOrigin  string
	maxUploadBytes int64
	dev            bool

	log *zerolog.Logger
}

type ServerDeps struct {
	GenUC     ports.GenerationUseCase
	StatusUC  ports.StatusUseCase
	UploadUC  ports.UploadUseCase
	AssetUC   ports.AssetUseCase
	CatalogUC ports.CatalogUseCase
	JobUC     ports.JobUseCase
	Auth      *AuthManager
	Limiter   Limiter
	WSJobs    http.Handler
	// Ready reports backing-store health for /health.
	Ready func(ctx context.Context) error
}

func NewServer(cfg *config.Config, deps ServerDeps, logger *zerolog.Logger) *Server {
	return &Server{
		genUC:          deps.GenUC,
		statusUC:       deps.StatusUC,
		uploadUC:       deps.UploadUC,
		assetUC:        deps.AssetUC,
		catalogUC:      deps.CatalogUC,
		jobUC:          deps.JobUC,
		auth:           deps.Auth,
		limiter:        deps.Limiter,
		wsJobs:         deps.WSJobs,
		ready:          deps.Ready,
		rateLimit:      cfg.API.RateLimit,
		rateWindow:     cfg.API.RateWindow,
		allowedOrigin:  cfg.API.AllowedOrigin,
		maxUploadBytes: cfg.Upload.MaxBytes,
		dev:            cfg.Runtime.Dev,
		log:            logger,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware, s.corsMiddleware, s.loggingMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		if s.dev {
			r.Post("/auth/dev-token", s.handleDevToken)
		}

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware, s.rateLimitMiddleware)

			r.Post("/uploads", s.handleUpload)
			r.Post("/generate-image", s.handleGenerateImage)
			r.Post("/generate-video", s.handleGenerateVideo)
			r.Post("/check-video-status", s.handleCheckVideoStatus)

			r.Get("/jobs", s.handleListJobs)
			r.Get("/jobs/{id}", s.handleGetJob)
			r.Delete("/jobs/{id}", s.handleDeleteJob)

			r.Get("/assets/signed-url", s.handleSignedURL)
			r.Get("/scenes", s.handleListScenes)
			r.Get("/models", s.handleListModels)
			r.Post("/models", s.handleCreateModel)
			r.Delete("/models/{id}", s.handleDeleteModel)
		})
	})

	if s.wsJobs != nil {
		r.With(s.authMiddleware).Get("/ws/jobs/{id}", s.wsJobs.ServeHTTP)
	}
	return r
}
