// Package segmentation turns the raw output of an external segmentation
// model into typed furniture and boundary regions.
package segmentation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"floorplan-extractor/internal/geometry"
	"floorplan-extractor/internal/taxonomy"
)

// ErrSegmentationFailure marks a failed segmentation call. It is the
// only pipeline error that aborts a whole extraction run.
var ErrSegmentationFailure = errors.New("segmentation failed")

// Options controls region filtering.
type Options struct {
	// ConfThreshold drops detections strictly below this confidence.
	ConfThreshold float64
	// IoUThreshold is forwarded to the detector for its own
	// de-duplication.
	IoUThreshold float64
	// MaxSizeRatio drops regions spanning more than this fraction of
	// the image on either axis; near-full-frame masks are background,
	// not objects.
	MaxSizeRatio float64
	// OverlapThreshold drops the smaller of two regions whose
	// intersection covers more than this fraction of it.
	OverlapThreshold float64
}

// DefaultOptions mirrors the thresholds the segmentation model was
// tuned with.
func DefaultOptions() Options {
	return Options{
		ConfThreshold:    0.4,
		IoUThreshold:     0.9,
		MaxSizeRatio:     0.5,
		OverlapThreshold: 0.5,
	}
}

// Segmenter invokes a Detector and filters its predictions into an
// ordered list of Regions.
type Segmenter struct {
	detector Detector
	opts     Options
	logger   *logrus.Logger
}

func NewSegmenter(detector Detector, opts Options, logger *logrus.Logger) *Segmenter {
	return &Segmenter{
		detector: detector,
		opts:     opts,
		logger:   logger,
	}
}

// Segment runs detection and returns the surviving regions in a stable
// order. Any detector failure wraps ErrSegmentationFailure; no partial
// results are fabricated.
func (s *Segmenter) Segment(ctx context.Context, imageBytes []byte, imgWidth, imgHeight int) ([]Region, error) {
	if imgWidth <= 0 || imgHeight <= 0 {
		return nil, fmt.Errorf("%w: image dimensions %dx%d", ErrSegmentationFailure, imgWidth, imgHeight)
	}

	detections, err := s.detector.Detect(ctx, imageBytes, s.opts.ConfThreshold, s.opts.IoUThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSegmentationFailure, err)
	}

	s.logger.Infof("Segmentation returned %d raw detections", len(detections))

	regions := make([]Region, 0, len(detections))
	for i, det := range detections {
		region, keep := s.toRegion(det, imgWidth, imgHeight)
		if !keep {
			s.logger.Debugf("Dropping detection %d (class=%q conf=%.2f)", i, det.Class, det.Confidence)
			continue
		}
		regions = append(regions, region)
	}

	regions = s.filterOverlapping(regions)

	s.logger.Infof("Segmentation produced %d regions after filtering", len(regions))
	return regions, nil
}

// toRegion converts one center-format prediction to a Region, applying
// the per-detection filters.
func (s *Segmenter) toRegion(det RawDetection, imgWidth, imgHeight int) (Region, bool) {
	if det.Confidence < s.opts.ConfThreshold {
		return Region{}, false
	}
	if math.IsNaN(det.X) || math.IsNaN(det.Y) || math.IsNaN(det.Width) || math.IsNaN(det.Height) {
		return Region{}, false
	}

	box := geometry.PixelBBox{
		X1: int(det.X - det.Width/2),
		Y1: int(det.Y - det.Height/2),
		X2: int(det.X + det.Width/2),
		Y2: int(det.Y + det.Height/2),
	}

	// Clamp to image bounds before judging the box.
	if box.X1 < 0 {
		box.X1 = 0
	}
	if box.Y1 < 0 {
		box.Y1 = 0
	}
	if box.X2 > imgWidth {
		box.X2 = imgWidth
	}
	if box.Y2 > imgHeight {
		box.Y2 = imgHeight
	}

	if !box.Valid() {
		return Region{}, false
	}

	if s.opts.MaxSizeRatio > 0 {
		widthRatio := float64(box.Width()) / float64(imgWidth)
		heightRatio := float64(box.Height()) / float64(imgHeight)
		if widthRatio > s.opts.MaxSizeRatio || heightRatio > s.opts.MaxSizeRatio {
			return Region{}, false
		}
	}

	region := Region{
		BBox:       box,
		Confidence: det.Confidence,
		Kind:       KindFurniture,
	}
	if taxonomy.IsBoundaryClass(det.Class) {
		region.Kind = KindBoundary
		region.Class = det.Class
	}

	return region, true
}

// filterOverlapping drops the smaller of any two same-kind regions whose
// overlap ratio exceeds the threshold, keeping the original ordering of
// the survivors. Boundary regions are exempt: a door legitimately sits
// on top of a wall.
func (s *Segmenter) filterOverlapping(regions []Region) []Region {
	if s.opts.OverlapThreshold <= 0 || len(regions) < 2 {
		return regions
	}

	// Visit larger regions first so containment removes the contained.
	order := make([]int, len(regions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return regions[order[a]].BBox.Area() > regions[order[b]].BBox.Area()
	})

	removed := make([]bool, len(regions))
	for ai, a := range order {
		if removed[a] {
			continue
		}
		for _, b := range order[ai+1:] {
			if removed[b] {
				continue
			}
			if regions[a].Kind != regions[b].Kind || regions[a].Kind == KindBoundary {
				continue
			}
			overlap := geometry.OverlapRatio(regions[a].BBox, regions[b].BBox)
			if overlap > s.opts.OverlapThreshold {
				removed[b] = true
				s.logger.Debugf("Dropping region %d: overlaps region %d by %.0f%%", b, a, overlap*100)
			}
		}
	}

	kept := make([]Region, 0, len(regions))
	for i, r := range regions {
		if !removed[i] {
			kept = append(kept, r)
		}
	}
	return kept
}
