// One-shot extraction runner. Feeds a floorplan image through the full
// pipeline from the command line and prints the result as JSON; useful
// for tuning thresholds without standing up the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"floorplan-extractor/internal/classification"
	"floorplan-extractor/internal/config"
	"floorplan-extractor/internal/extraction"
	"floorplan-extractor/internal/highlight"
	"floorplan-extractor/internal/logger"
	"floorplan-extractor/internal/segmentation"
)

func main() {
	conf := flag.Float64("conf", 0, "confidence threshold override (0 keeps the configured value)")
	iou := flag.Float64("iou", 0, "IoU threshold override (0 keeps the configured value)")
	noDebug := flag.Bool("no-debug", false, "skip writing debug images")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <floorplan-image>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

	cfg := config.Load()
	log := logger.New(cfg.Logging.Level)

	imageBytes, err := os.ReadFile(imagePath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", imagePath, err)
	}

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

	coordinator := extraction.NewCoordinator(
		detector,
		highlight.NewCompositor(highlight.DefaultOptions()),
		classifier,
		log,
	).WithProgress(func(current, total int, name string, confidence classification.Confidence) {
		fmt.Fprintf(os.Stderr, "classified %d/%d: %s (%s)\n", current, total, name, confidence)
	})

	opts := extraction.DefaultOptions()
	opts.ConfThreshold = cfg.Pipeline.ConfThreshold
	opts.IoUThreshold = cfg.Pipeline.IoUThreshold
	opts.SaveDebugImages = cfg.Pipeline.SaveDebug && !*noDebug
	opts.DebugOutputDir = cfg.Pipeline.DebugOutputDir
	if *conf > 0 {
		opts.ConfThreshold = *conf
	}
	if *iou > 0 {
		opts.IoUThreshold = *iou
	}

	start := time.Now()
	result, err := coordinator.Extract(context.Background(), imageBytes, opts)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	log.Infof("Extracted %d objects and %d boundaries in %s",
		len(result.Objects), len(result.Boundaries), time.Since(start).Round(time.Millisecond))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
