package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shotforge/internal/adapter/repo"
	"shotforge/internal/catalog"
	"shotforge/internal/domain"
	"shotforge/internal/http/handlers"
	httpapi "shotforge/internal/http/httpapi"
	"shotforge/internal/infra"
	"shotforge/internal/orchestrator"
	"shotforge/internal/pipeline"
	"shotforge/internal/providers/subject"
	"shotforge/internal/providers/synth"
	"shotforge/internal/providers/vision"
	"shotforge/internal/scene"
	"shotforge/internal/storage"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shot catalog: TOML file when configured, built-in set otherwise.
	var shots *catalog.InMemory
	if cfg.CatalogPath != "" {
		shots, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("failed to load shot catalog")
		}
		logger.Info().Str("path", cfg.CatalogPath).Int("shots", shots.Size()).Msg("shot catalog loaded")
	} else {
		shots, err = catalog.Default()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build default shot catalog")
		}
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize asset storage")
	}

	// Repositories: pgx-backed when DATABASE_URL is set, in-memory otherwise.
	var (
		subjects domain.SubjectProvider
		images   domain.ImageRepository
		archive  domain.JobArchive
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		subjects = repo.NewSubjectRepository(dbpool)
		images = repo.NewImageRepository(dbpool)
		archive = repo.NewJobArchive(dbpool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory repositories")
		subjects = repo.NewMemorySubjectStore()
		images = repo.NewMemoryImageRepository()
		archive = repo.NewMemoryJobArchive()
	}
	subjects = subject.NewCached(subjects, cfg.SubjectCacheTTL)

	synthClient, err := synth.NewGemini(synth.Options{
		APIKey:  cfg.SynthAPIKey,
		BaseURL: cfg.SynthBaseURL,
		Model:   cfg.SynthModel,
		Store:   store,
		Logger:  &logger,
		Timeout: cfg.SynthTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build synthesis client")
	}
	visionClient, err := vision.NewGemini(vision.Options{
		APIKey:  cfg.VisionAPIKey,
		BaseURL: cfg.VisionBaseURL,
		Model:   cfg.VisionModel,
		Store:   store,
		Logger:  &logger,
		Timeout: cfg.VisionTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build vision client")
	}

	pipe := pipeline.New(pipeline.Options{
		Synthesizer: synthClient,
		Analyzer:    visionClient,
		Logger:      logger,
		RateEvery:   cfg.SynthRateEvery,
	})

	jobs := orchestrator.New(ctx, orchestrator.Options{
		Pipeline:          pipe,
		Catalog:           shots,
		Subjects:          subjects,
		Images:            images,
		Archive:           archive,
		Logger:            logger,
		MaxConcurrentJobs: cfg.MaxConcurrentJobs,
	})

	selector := scene.NewSelector(images, shots, logger)
	app := handlers.NewApp(jobs, selector, shots, images, logger)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}

	// Stop accepting work and let running jobs wind down cooperatively.
	cancel()
	jobs.Wait()
	logger.Info().Msg("server stopped")
}
