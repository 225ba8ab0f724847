// Package classification assigns one taxonomy entry to one highlighted
// furniture region via a remote vision model. One region per request:
// batched multi-object prompts were tried and caused cross-object
// confusion, so the pipeline pays N focused calls instead.
package classification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"floorplan-extractor/internal/taxonomy"
)

// Confidence is the coarse advisory certainty attached to a result. It
// is not a probability and must never be used for automatic filtering
// without explicit caller opt-in.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

var (
	// ErrParseFailure marks a model response that violated the
	// single-JSON-object contract. Recovered per region via the
	// sentinel fallback.
	ErrParseFailure = errors.New("classification response violates contract")
	// ErrServiceUnavailable marks the classification service as a
	// whole being unusable (no client, missing or rejected
	// credentials). Recovered at the run level: every region gets the
	// sentinel.
	ErrServiceUnavailable = errors.New("classification service unavailable")
)

// Result is the outcome for exactly one furniture region.
type Result struct {
	FurnitureID   string     `json:"furniture_id"`
	FurnitureName string     `json:"furniture_name"`
	Confidence    Confidence `json:"confidence"`
	Reasoning     string     `json:"reasoning"`
}

// Sentinel builds the fixed fallback result substituted whenever a real
// classification cannot be obtained, so every region always carries a
// result and downstream code never handles "missing".
func Sentinel(reason string) Result {
	return Result{
		FurnitureID:   taxonomy.UnknownID,
		FurnitureName: taxonomy.UnknownName,
		Confidence:    ConfidenceUnknown,
		Reasoning:     reason,
	}
}

// contractPayload is the wire shape the model must answer with. The
// confidence enum excludes "unknown": that value is reserved for the
// sentinel, so a model claiming it fails validation.
type contractPayload struct {
	FurnitureID   string `json:"furniture_id" validate:"required"`
	FurnitureName string `json:"furniture_name" validate:"required"`
	Confidence    string `json:"confidence" validate:"required,oneof=high medium low"`
	Reasoning     string `json:"reasoning"`
}

// Classifier runs single-object classification requests.
type Classifier struct {
	client   VisionClient
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewClassifier builds a classifier. A nil client means the service is
// not configured; every classification then degrades to the sentinel.
func NewClassifier(client VisionClient, logger *logrus.Logger) *Classifier {
	return &Classifier{
		client:   client,
		validate: validator.New(),
		logger:   logger,
	}
}

// Available reports whether real classification can be attempted.
func (c *Classifier) Available() bool {
	return c.client != nil
}

// ClassifyObject classifies the region shown in highlightImage, using
// contextImage for whole-scene context. It always returns a usable
// Result; on any failure the sentinel is returned together with the
// causing error for logging.
func (c *Classifier) ClassifyObject(ctx context.Context, contextImage, highlightImage []byte, aspectRatio float64) (Result, error) {
	if !c.Available() {
		return Sentinel("No API key"), ErrServiceUnavailable
	}

	prompt := BuildPrompt(aspectRatio)
	images := []ImagePart{
		{Data: contextImage, Detail: "low"},
		{Data: highlightImage, Detail: "high"},
	}

	raw, err := c.client.Complete(ctx, prompt, images)
	if err != nil {
		c.logger.Warnf("Classification request failed: %v", err)
		return Sentinel(fmt.Sprintf("Classification failed: %v", err)), err
	}

	result, err := c.parseResponse(raw)
	if err != nil {
		c.logger.Warnf("Classification response rejected: %v", err)
		return Sentinel(fmt.Sprintf("Classification failed: %v", err)), err
	}

	return result, nil
}

// parseResponse enforces the contract: exactly one JSON object, all
// required keys, confidence from the closed enum, furniture_id from the
// taxonomy. Anything else is ErrParseFailure, never a best-effort
// partial parse.
func (c *Classifier) parseResponse(raw string) (Result, error) {
	text := stripCodeFences(raw)
	if text == "" {
		return Result{}, fmt.Errorf("%w: empty response", ErrParseFailure)
	}
	if strings.HasPrefix(text, "[") {
		return Result{}, fmt.Errorf("%w: got an array, expected a single object", ErrParseFailure)
	}

	var payload contractPayload
	decoder := json.NewDecoder(strings.NewReader(text))
	if err := decoder.Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	if err := c.validate.Struct(payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	if !taxonomy.Contains(payload.FurnitureID) {
		return Result{}, fmt.Errorf("%w: furniture_id %q not in taxonomy", ErrParseFailure, payload.FurnitureID)
	}

	return Result{
		FurnitureID:   payload.FurnitureID,
		FurnitureName: payload.FurnitureName,
		Confidence:    Confidence(payload.Confidence),
		Reasoning:     payload.Reasoning,
	}, nil
}

// stripCodeFences unwraps ```json ... ``` blocks some models insist on.
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	return strings.TrimSpace(text)
}
