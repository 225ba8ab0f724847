package segmentation

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

type mockDetector struct {
	detections []RawDetection
	err        error
}

func (m *mockDetector) Detect(ctx context.Context, imageBytes []byte, conf, iou float64) ([]RawDetection, error) {
	return m.detections, m.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSegmentRouting(t *testing.T) {
	detector := &mockDetector{
		detections: []RawDetection{
			{X: 100, Y: 100, Width: 80, Height: 60, Confidence: 0.9, Class: ""},
			{X: 300, Y: 50, Width: 200, Height: 20, Confidence: 0.8, Class: "wall"},
			{X: 200, Y: 300, Width: 40, Height: 30, Confidence: 0.7, Class: "door"},
			{X: 400, Y: 300, Width: 50, Height: 50, Confidence: 0.85, Class: "sofa"},
		},
	}
	seg := NewSegmenter(detector, DefaultOptions(), quietLogger())

	regions, err := seg.Segment(context.Background(), []byte("img"), 1000, 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 4 {
		t.Fatalf("expected 4 regions, got %d", len(regions))
	}

	wantKinds := []Kind{KindFurniture, KindBoundary, KindBoundary, KindFurniture}
	wantClasses := []string{"", "wall", "door", ""}
	for i, r := range regions {
		if r.Kind != wantKinds[i] {
			t.Errorf("region %d: kind = %q, want %q", i, r.Kind, wantKinds[i])
		}
		if r.Class != wantClasses[i] {
			t.Errorf("region %d: class = %q, want %q", i, r.Class, wantClasses[i])
		}
	}
}

func TestSegmentConfidenceFilter(t *testing.T) {
	detector := &mockDetector{
		detections: []RawDetection{
			{X: 100, Y: 100, Width: 80, Height: 60, Confidence: 0.39},
			{X: 300, Y: 100, Width: 80, Height: 60, Confidence: 0.40},
			{X: 500, Y: 100, Width: 80, Height: 60, Confidence: 0.41},
		},
	}
	seg := NewSegmenter(detector, DefaultOptions(), quietLogger())

	regions, err := seg.Segment(context.Background(), []byte("img"), 1000, 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 0.39 is strictly below the 0.4 threshold; 0.40 is at it and kept.
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
}

func TestSegmentDegenerateFilter(t *testing.T) {
	detector := &mockDetector{
		detections: []RawDetection{
			{X: 100, Y: 100, Width: 1, Height: 60, Confidence: 0.9},
			{X: 300, Y: 100, Width: 80, Height: 0, Confidence: 0.9},
			{X: 500, Y: 100, Width: 80, Height: 60, Confidence: 0.9},
		},
	}
	seg := NewSegmenter(detector, DefaultOptions(), quietLogger())

	regions, err := seg.Segment(context.Background(), []byte("img"), 1000, 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected only the well-formed region, got %d", len(regions))
	}
}

func TestSegmentMaxSizeRatio(t *testing.T) {
	detector := &mockDetector{
		detections: []RawDetection{
			// Spans 90% of image width: background, not furniture.
			{X: 500, Y: 400, Width: 900, Height: 100, Confidence: 0.9},
			{X: 500, Y: 100, Width: 100, Height: 100, Confidence: 0.9},
		},
	}
	seg := NewSegmenter(detector, DefaultOptions(), quietLogger())

	regions, err := seg.Segment(context.Background(), []byte("img"), 1000, 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected the oversized region to be dropped, got %d regions", len(regions))
	}
}

func TestSegmentOverlapFilter(t *testing.T) {
	detector := &mockDetector{
		detections: []RawDetection{
			// A chair box fully inside a table box.
			{X: 200, Y: 200, Width: 300, Height: 200, Confidence: 0.9},
			{X: 200, Y: 200, Width: 50, Height: 50, Confidence: 0.8},
			// A distinct object elsewhere.
			{X: 700, Y: 600, Width: 100, Height: 100, Confidence: 0.9},
		},
	}
	seg := NewSegmenter(detector, DefaultOptions(), quietLogger())

	regions, err := seg.Segment(context.Background(), []byte("img"), 1000, 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected contained region to be dropped, got %d regions", len(regions))
	}
	// Order of survivors matches detector order.
	if regions[0].BBox.Width() != 300 {
		t.Errorf("expected the larger region first, got %+v", regions[0].BBox)
	}
}

func TestSegmentBoundariesMayOverlap(t *testing.T) {
	detector := &mockDetector{
		detections: []RawDetection{
			{X: 500, Y: 100, Width: 400, Height: 30, Confidence: 0.9, Class: "wall"},
			{X: 500, Y: 100, Width: 60, Height: 30, Confidence: 0.8, Class: "door"},
		},
	}
	seg := NewSegmenter(detector, DefaultOptions(), quietLogger())

	regions, err := seg.Segment(context.Background(), []byte("img"), 1000, 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("door on wall must survive overlap filtering, got %d regions", len(regions))
	}
}

func TestSegmentDetectorFailure(t *testing.T) {
	seg := NewSegmenter(&mockDetector{err: errors.New("connection refused")}, DefaultOptions(), quietLogger())

	_, err := seg.Segment(context.Background(), []byte("img"), 1000, 800)
	if !errors.Is(err, ErrSegmentationFailure) {
		t.Fatalf("expected ErrSegmentationFailure, got %v", err)
	}
}
