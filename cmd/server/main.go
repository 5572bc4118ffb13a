package main

import (
	"fmt"
	"log"
	"time"

	"mealscan/internal/config"
	"mealscan/internal/enrich"
	"mealscan/internal/handler"
	"mealscan/internal/imageproc"
	"mealscan/internal/metrics"
	"mealscan/internal/port"
	"mealscan/internal/repository/postgres"
	"mealscan/internal/router"
	"mealscan/internal/service"
	s3storage "mealscan/internal/storage/s3"
	"mealscan/internal/vision"
	"mealscan/internal/vision/gemini"

	"github.com/jmoiron/sqlx"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	metrics.Register()

	// Composition database is optional; without it the pipeline runs
	// unenriched.
	var db *sqlx.DB
	var compositionRepo port.CompositionRepository
	if cfg.DB.Enabled() {
		db, err = postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		compositionRepo = postgres.NewFoodRepo(db)
	} else {
		log.Printf("server: no composition database configured, enrichment disabled")
	}

	// Photo storage is optional too.
	var storage port.ObjectStorage
	if cfg.S3.Enabled() {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Vision provider selection belongs here, not inside the pipeline.
	provider := gemini.NewProvider(&cfg.Vision)

	policy := vision.DefaultRetryPolicy()
	if cfg.Vision.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.Vision.MaxAttempts
	}
	client := vision.NewClient(provider, policy, nil)

	genOpts := vision.DefaultGenerationOptions()
	if cfg.Vision.Temperature > 0 {
		genOpts.Temperature = cfg.Vision.Temperature
	}
	if cfg.Vision.MaxOutputTokens > 0 {
		genOpts.MaxOutputTokens = cfg.Vision.MaxOutputTokens
	}
	if cfg.Vision.TimeoutSecs > 0 {
		genOpts.Timeout = time.Duration(cfg.Vision.TimeoutSecs) * time.Second
	}

	enrichOpts := enrich.DefaultOptions()
	enrichOpts.CandidateLimit = cfg.Enrich.CandidateLimit
	enrichOpts.MinConfidence = cfg.Enrich.MinConfidence
	if !cfg.Enrich.Enabled {
		compositionRepo = nil
	}
	enricher := enrich.NewEnricher(compositionRepo, enrichOpts)

	processor := imageproc.NewProcessor(&cfg.Image)

	analysisSvc := service.NewAnalysisService(
		client, enricher, processor, storage, &cfg.S3,
		genOpts, vision.DefaultNormalizeOptions(),
	)

	var foodSvc service.FoodService
	if compositionRepo != nil {
		foodSvc = service.NewFoodService(compositionRepo)
	}

	analysisH := handler.NewAnalysisHandler(analysisSvc)
	foodH := handler.NewFoodHandler(foodSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, analysisH, foodH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
