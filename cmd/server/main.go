package main

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"floorplan-extractor/internal/api"
	"floorplan-extractor/internal/classification"
	"floorplan-extractor/internal/config"
	"floorplan-extractor/internal/extraction"
	"floorplan-extractor/internal/highlight"
	"floorplan-extractor/internal/logger"
	"floorplan-extractor/internal/segmentation"
	"floorplan-extractor/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Logging.Level)

	detector := segmentation.NewClient(
		cfg.Segmentation.BaseURL,
		cfg.Segmentation.ModelID,
		time.Duration(cfg.Segmentation.TimeoutSeconds)*time.Second,
		log,
	)

	var visionClient classification.VisionClient
	if cfg.OpenAI.APIKey != "" {
		visionClient = classification.NewOpenAIClient(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second,
		)
	} else {
		log.Warn("OPENAI_API_KEY not set, every object will fall back to Other/Unknown")
	}
	classifier := classification.NewClassifier(visionClient, log)

	compositor := highlight.NewCompositor(highlight.DefaultOptions())

	coordinator := extraction.NewCoordinator(detector, compositor, classifier, log)

	opts := extraction.DefaultOptions()
	opts.ConfThreshold = cfg.Pipeline.ConfThreshold
	opts.IoUThreshold = cfg.Pipeline.IoUThreshold
	opts.SaveDebugImages = cfg.Pipeline.SaveDebug
	opts.DebugOutputDir = cfg.Pipeline.DebugOutputDir

	app := &api.App{
		Extractor:     coordinator,
		Store:         store.NewMemoryStore(),
		Defaults:      opts,
		MaxUploadSize: 10 << 20,
		Validate:      validator.New(),
		Logger:        log,
	}

	router := api.NewRouter(app)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Infof("Server starting on %s", addr)
	log.Infof("Segmentation API: %s (model %s)", cfg.Segmentation.BaseURL, cfg.Segmentation.ModelID)
	log.Infof("Classification model: %s", cfg.OpenAI.Model)
	if cfg.Pipeline.SaveDebug {
		log.Infof("Debug images: %s", cfg.Pipeline.DebugOutputDir)
	}

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal(err)
	}
}
