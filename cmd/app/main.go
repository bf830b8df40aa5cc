package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tryonjewel-server/internal/config"
	"tryonjewel-server/internal/domain/ports/adapter"
	aiAdapters "tryonjewel-server/internal/infra/adapters/ai"
	"tryonjewel-server/internal/infra/cache"
	pg "tryonjewel-server/internal/infra/db/postgres"
	"tryonjewel-server/internal/infra/imaging"
	"tryonjewel-server/internal/infra/logging"
	"tryonjewel-server/internal/infra/metrics"
	red "tryonjewel-server/internal/infra/redis"
	"tryonjewel-server/internal/infra/storage"
	"tryonjewel-server/internal/infra/web"
	"tryonjewel-server/internal/infra/worker"
	"tryonjewel-server/internal/infra/ws"
	"tryonjewel-server/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, dev token endpoint, noop AI fallback")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	quota := red.NewQuotaCounter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Object storage ----
	store, err := storage.NewMinioStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("object storage")
	}

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	jobRepo := pg.NewGenerationJobRepo(pool, tm)
	sceneRepo := pg.NewSceneRepoCacheDecorator(pg.NewSceneRepo(pool), redisClient)
	modelRepo := pg.NewUserModelRepo(pool)
	userRepo := pg.NewUserRepo(pool)

	// ---- AI adapters ----
	var imageGens []adapter.ImageGenerator
	var videoGen adapter.VideoGenerator
	if cfg.AI.GeminiKey != "" {
		gem, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL,
			cfg.AI.GeminiImageModel, cfg.AI.GeminiVideoModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		imageGens = append(imageGens, gem)
		videoGen = gem
		logger.Info().Str("image_model", cfg.AI.GeminiImageModel).
			Str("video_model", cfg.AI.GeminiVideoModel).Msg("gemini adapter ready")
	}
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIImageModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		imageGens = append(imageGens, oa)
		logger.Info().Str("model", cfg.AI.OpenAIImageModel).Msg("openai adapter ready")
	}
	if len(imageGens) == 0 || videoGen == nil {
		if !cfg.Runtime.Dev {
			logger.Fatal().Msg("no AI provider configured: set ai.gemini_key (and optionally ai.openai_key)")
		}
		noop := aiAdapters.NewNoopAdapter()
		if len(imageGens) == 0 {
			imageGens = append(imageGens, noop)
			cfg.AI.DefaultProvider = noop.Name()
		}
		if videoGen == nil {
			videoGen = noop
		}
		logger.Warn().Msg("using noop AI adapter")
	}

	// ---- Use cases ----
	urlCache := cache.NewSignedURLCache(cfg.Storage.SignTTL)
	assetUC := usecase.NewAssetService(store, urlCache, cfg.Storage.SignTTL)
	hub := ws.NewHub(logger)
	go hub.Run()

	genUC := usecase.NewGenerationService(jobRepo, sceneRepo, modelRepo, store,
		imageGens, cfg.AI.DefaultProvider, videoGen, quota, userRepo, cfg.API.DailyQuota, hub, logger)
	statusUC := usecase.NewStatusService(jobRepo, videoGen, store, assetUC, locker, hub,
		30*time.Second, cfg.Poller.MaxElapsed, logger)
	uploadUC := usecase.NewUploadService(store, imaging.NewCompressor(cfg.Upload), cfg.Upload.MaxBytes, logger)
	catalogUC := usecase.NewCatalogService(sceneRepo, modelRepo, logger)
	jobUC := usecase.NewJobService(jobRepo)

	// ---- Background workers ----
	pool2 := worker.NewPool(cfg.Poller.Workers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()
	poller := worker.NewVideoPoller(jobRepo, statusUC, cfg.Poller, logger)
	go poller.Start(ctx, pool2)
	janitor := worker.NewJanitor(jobRepo, cfg.Poller, logger)
	go janitor.Start(ctx)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.API.JWTSecret, cfg.API.JWTTTL)
	wsHandler := ws.NewHandler(hub, jobUC, web.UserID, cfg.API.AllowedOrigin)
	srv := web.NewServer(cfg, web.ServerDeps{
		GenUC:     genUC,
		StatusUC:  statusUC,
		UploadUC:  uploadUC,
		AssetUC:   assetUC,
		CatalogUC: catalogUC,
		JobUC:     jobUC,
		Auth:      auth,
		Limiter:   rateLimiter,
		WSJobs:    wsHandler,
		Ready: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if err := redisClient.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		},
	}, logger)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", apiServer.Addr).Msg("api listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("api server")
		}
	}()

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.MetricsPort),
		Handler: promhttp.Handler(),
	}
	go func() {
		logger.Info().Str("addr", metricsServer.Addr).Msg("metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)
	cancel()
}
