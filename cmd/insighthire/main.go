package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/insighthire/internal/config"
	dbRedis "github.com/kailas-cloud/insighthire/internal/db/redis"
	"github.com/kailas-cloud/insighthire/internal/domain/rank/mode"
	logpkg "github.com/kailas-cloud/insighthire/internal/logger"
	"github.com/kailas-cloud/insighthire/internal/metrics"
	candidaterepo "github.com/kailas-cloud/insighthire/internal/repository/candidate"
	jobrepo "github.com/kailas-cloud/insighthire/internal/repository/job"
	pgjobrepo "github.com/kailas-cloud/insighthire/internal/repository/job/postgres"
	chiTransport "github.com/kailas-cloud/insighthire/internal/transport/chi"
	geminiTitle "github.com/kailas-cloud/insighthire/internal/transport/gemini"
	openaiEmb "github.com/kailas-cloud/insighthire/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/insighthire/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/insighthire/internal/usecase/health"
	"github.com/kailas-cloud/insighthire/internal/usecase/ranking"
	searchuc "github.com/kailas-cloud/insighthire/internal/usecase/search"
	"github.com/kailas-cloud/insighthire/internal/version"
)

func main() {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting insighthire API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("jobs_driver", cfg.Jobs.Driver),
		zap.String("title_provider", cfg.Title.Provider),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Registered explicitly, no init().
	metrics.RegisterProviderMetrics()
	metrics.RegisterRankingMetrics()

	embedder := embeddinguc.NewInstrumentedEmbedder(
		openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		}),
		cfg.Embedding.Provider, cfg.Embedding.Model, logger,
	)

	candRepo := candidaterepo.New(store, cfg.Storage.KeyPrefix, logger)
	healthSvc := healthuc.New(store, embedder)

	var jobs searchuc.JobRepository
	switch cfg.Jobs.Driver {
	case config.JobsDriverPostgres:
		conn, err := pgjobrepo.Open(ctx, cfg.Jobs.PostgresDSN)
		if err != nil {
			logger.Fatal("Failed to connect to postgres", zap.Error(err))
		}
		defer func() { _ = conn.Close() }()
		pg := pgjobrepo.New(conn)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare jobs schema", zap.Error(err))
		}
		jobs = pg
		healthSvc = healthSvc.WithJobStore(pg)
	default:
		jobs = jobrepo.New(store, cfg.Storage.KeyPrefix)
	}

	titler, err := buildTitler(ctx, &cfg.Title, logger)
	if err != nil {
		logger.Fatal("Failed to create title generator", zap.Error(err))
	}

	rankMode, err := mode.Parse(cfg.Ranking.Mode)
	if err != nil {
		logger.Fatal("Invalid ranking mode", zap.Error(err))
	}
	ranker := ranking.New(embedder,
		ranking.WithWorkers(cfg.Ranking.Workers),
		ranking.WithLogger(logger),
	)

	searchOpts := []searchuc.Option{
		searchuc.WithMode(rankMode),
		searchuc.WithResultLimit(cfg.Search.ResultLimit),
		searchuc.WithTopSkills(cfg.Search.TopSkills),
		searchuc.WithLogger(logger),
	}
	if titler != nil {
		searchOpts = append(searchOpts, searchuc.WithTitler(titler))
	}
	searchSvc := searchuc.New(candRepo, jobs, ranker, embedder, searchOpts...)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(chiTransport.CORS(chiTransport.CORSConfig{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAgeSec,
	}))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildTitler returns nil when title generation is disabled.
func buildTitler(ctx context.Context, cfg *config.TitleConfig, logger *zap.Logger) (searchuc.Titler, error) {
	switch cfg.Provider {
	case config.TitleProviderNone:
		return nil, nil
	case config.TitleProviderGemini:
		t, err := geminiTitle.NewTitler(ctx, &geminiTitle.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini titler: %w", err)
		}
		return t, nil
	default:
		return openaiEmb.NewTitler(&openaiEmb.TitlerConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Logger:      logger,
		}), nil
	}
}
