// Package config loads application configuration from environment
// variables, with a .env file picked up when present.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config collects every knob the binaries need. Pipeline defaults live
// in extraction.DefaultOptions; the values here only override them.
type Config struct {
	Server struct {
		Port string
		Host string
	}
	Segmentation struct {
		BaseURL        string
		ModelID        string
		TimeoutSeconds int
	}
	OpenAI struct {
		APIKey         string
		Model          string
		TimeoutSeconds int
	}
	Pipeline struct {
		ConfThreshold  float64
		IoUThreshold   float64
		SaveDebug      bool
		DebugOutputDir string
	}
	Logging struct {
		Level string
	}
}

// Load reads the environment. A missing .env file is not an error; the
// original backend behaves the same way via python-dotenv.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Server.Port = getEnv("PORT", "8080")
	cfg.Server.Host = getEnv("HOST", "0.0.0.0")

	cfg.Segmentation.BaseURL = getEnv("SEGMENTATION_API_URL", "http://localhost:9001")
	cfg.Segmentation.ModelID = getEnv("SEGMENTATION_MODEL_ID", "cubicasa5k-2/6")
	cfg.Segmentation.TimeoutSeconds = getEnvInt("SEGMENTATION_TIMEOUT_SECONDS", 60)

	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAI.Model = getEnv("OPENAI_MODEL", "gpt-4o")
	cfg.OpenAI.TimeoutSeconds = getEnvInt("OPENAI_TIMEOUT_SECONDS", 30)

	cfg.Pipeline.ConfThreshold = getEnvFloat("CONF_THRESHOLD", 0.4)
	cfg.Pipeline.IoUThreshold = getEnvFloat("IOU_THRESHOLD", 0.9)
	cfg.Pipeline.SaveDebug = getEnvBool("SAVE_DEBUG_IMAGES", true)
	cfg.Pipeline.DebugOutputDir = getEnv("DEBUG_OUTPUT_DIR", "classification_debug")

	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
