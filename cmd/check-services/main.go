// Quick health report for the two external services the pipeline
// depends on. Run it before debugging extraction issues.
package main

import (
	"context"
	"fmt"
	"time"

	"floorplan-extractor/internal/config"
	"floorplan-extractor/internal/logger"
	"floorplan-extractor/internal/segmentation"
)

func main() {
	cfg := config.Load()
	log := logger.New("error")

	fmt.Println("Checking extraction pipeline services")
	fmt.Println("=====================================")

	if cfg.OpenAI.APIKey != "" {
		fmt.Printf("Classification: OPENAI_API_KEY set (model %s)\n", cfg.OpenAI.Model)
	} else {
		fmt.Println("Classification: OPENAI_API_KEY not set")
		fmt.Println("  Extraction still runs, but every object falls back to Other/Unknown")
	}

	fmt.Printf("Segmentation:   %s (model %s)\n", cfg.Segmentation.BaseURL, cfg.Segmentation.ModelID)

	client := segmentation.NewClient(
		cfg.Segmentation.BaseURL,
		cfg.Segmentation.ModelID,
		10*time.Second,
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.CheckHealth(ctx); err != nil {
		fmt.Printf("  Health check FAILED: %v\n", err)
		fmt.Println("  Extraction requests will abort until the detector is reachable")
		return
	}
	fmt.Println("  Health check OK")
}
