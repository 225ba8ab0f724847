package segmentation

import (
	"context"

	"floorplan-extractor/internal/geometry"
)

// Kind partitions detected regions into furniture candidates, which go
// through vision classification, and architectural boundaries, which
// are typed directly from the detector's class hint.
type Kind string

const (
	KindFurniture Kind = "furniture"
	KindBoundary  Kind = "boundary"
)

// RawDetection is one prediction from the inference service, in the
// service's center-point format.
type RawDetection struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	Class      string  `json:"class"`
}

// Region is a filtered, typed detection. Geometry is immutable after
// segmentation; the coordinator attaches normalized coordinates and,
// for furniture, the classification result.
type Region struct {
	BBox       geometry.PixelBBox
	Confidence float64
	Kind       Kind
	// Class is set for boundary regions only (wall, door, window).
	Class string
}

// Detector is the black-box segmentation model. Implementations return
// every raw prediction; filtering happens in the Segmenter.
type Detector interface {
	Detect(ctx context.Context, imageBytes []byte, conf, iou float64) ([]RawDetection, error)
}
