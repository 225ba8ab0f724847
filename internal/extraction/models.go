package extraction

import (
	"time"

	"floorplan-extractor/internal/classification"
	"floorplan-extractor/internal/geometry"
)

// Position is a normalized center point in the floorplan.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is a normalized width/height pair.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AspectRatioInfo pairs the measured aspect ratio with the typical
// ratio of the classified type, for the editor's inspection panel.
type AspectRatioInfo struct {
	Value       float64 `json:"value"`
	Typical     string  `json:"typical"`
	Description string  `json:"description"`
}

// Object is one classified furniture region in the shape the floorplan
// editor consumes. Rotation is always 0 at extraction time; the user
// rotates objects in the editor.
type Object struct {
	ID             string                    `json:"id"`
	Type           string                    `json:"type"`
	Name           string                    `json:"name"`
	Model          string                    `json:"model"`
	Position       Position                  `json:"position"`
	Dimensions     Dimensions                `json:"dimensions"`
	Rotation       float64                   `json:"rotation"`
	BBoxNormalized geometry.BBox             `json:"bbox_normalized"`
	BBoxPixels     geometry.PixelBBox        `json:"bbox_pixels"`
	Confidence     classification.Confidence `json:"confidence"`
	Reasoning      string                    `json:"reasoning"`
	AspectRatio    AspectRatioInfo           `json:"aspect_ratio"`
}

// Boundary is an architectural element (wall, door, window). Its class
// comes straight from the segmentation model; boundaries are never sent
// to the classifier, so confidence here is the detector's numeric
// score, not the classifier's enum.
type Boundary struct {
	ID             string             `json:"id"`
	Class          string             `json:"class"`
	Position       Position           `json:"position"`
	Dimensions     Dimensions         `json:"dimensions"`
	Confidence     float64            `json:"confidence"`
	BBoxNormalized geometry.BBox      `json:"bbox_normalized"`
	BBoxPixels     geometry.PixelBBox `json:"bbox_pixels"`
}

// Result is the complete output of one extraction run. Objects and
// Boundaries each preserve segmenter order.
type Result struct {
	RunID      string     `json:"run_id"`
	Objects    []Object   `json:"objects"`
	Boundaries []Boundary `json:"boundaries"`
}

// Options are the per-run pipeline knobs.
type Options struct {
	// ConfThreshold drops detections below this confidence (default 0.4).
	ConfThreshold float64
	// IoUThreshold controls the detector's de-duplication (default 0.9).
	IoUThreshold float64
	// SaveDebugImages persists the clean + highlighted artifact set
	// (default true). Failures are logged and skipped.
	SaveDebugImages bool
	// DebugOutputDir is the artifact base directory
	// (default "classification_debug").
	DebugOutputDir string
	// ClassifyTimeout bounds each single-object classification call; a
	// call that exceeds it becomes a per-object sentinel, not a run
	// failure (default 60s).
	ClassifyTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		ConfThreshold:   0.4,
		IoUThreshold:    0.9,
		SaveDebugImages: true,
		DebugOutputDir:  "classification_debug",
		ClassifyTimeout: 60 * time.Second,
	}
}
