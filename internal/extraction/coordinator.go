// Package extraction sequences the floorplan pipeline: segment the
// raster into regions, normalize geometry, render per-object highlight
// images, classify each furniture region one at a time, and merge the
// results into the object and boundary lists the editor consumes.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"floorplan-extractor/internal/classification"
	"floorplan-extractor/internal/geometry"
	"floorplan-extractor/internal/highlight"
	"floorplan-extractor/internal/segmentation"
	"floorplan-extractor/internal/taxonomy"
)

// ProgressFunc is called once per classified object. Observability
// only: results are identical with or without it.
type ProgressFunc func(current, total int, name string, confidence classification.Confidence)

// Coordinator owns the pipeline collaborators. Classification calls are
// issued strictly sequentially in segmenter order; the remote service
// is rate-limited and batching was rejected for accuracy, so there is
// nothing to gain from fan-out here.
type Coordinator struct {
	detector   segmentation.Detector
	compositor *highlight.Compositor
	classifier *classification.Classifier
	logger     *logrus.Logger

	// sink overrides the per-run artifact sink when set; tests inject
	// recording or failing sinks through it.
	sink highlight.ArtifactSink
	// progress is optional.
	progress ProgressFunc
	// now is swappable for deterministic run ids in tests.
	now func() time.Time
}

func NewCoordinator(detector segmentation.Detector, compositor *highlight.Compositor, classifier *classification.Classifier, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		detector:   detector,
		compositor: compositor,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// WithArtifactSink fixes the artifact sink instead of deriving it from
// the run options.
func (c *Coordinator) WithArtifactSink(sink highlight.ArtifactSink) *Coordinator {
	c.sink = sink
	return c
}

// WithProgress registers a per-object progress callback.
func (c *Coordinator) WithProgress(fn ProgressFunc) *Coordinator {
	c.progress = fn
	return c
}

// furnitureCandidate carries one furniture region through the
// highlight/classify stages.
type furnitureCandidate struct {
	region segmentation.Region
	norm   geometry.BBox
}

// Extract runs the full pipeline on one floorplan raster. Only a
// segmentation failure (including an undecodable image) aborts; every
// other problem degrades to sentinel classifications or skipped debug
// artifacts, so the caller always gets complete geometry or a single
// top-level error, never a silently truncated list.
func (c *Coordinator) Extract(ctx context.Context, imageBytes []byte, opts Options) (*Result, error) {
	runID := c.now().Format("20060102_150405")

	img, imgWidth, imgHeight, err := highlight.Decode(imageBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", segmentation.ErrSegmentationFailure, err)
	}

	c.logger.Infof("Extraction run %s: %dx%d image", runID, imgWidth, imgHeight)

	segOpts := segmentation.DefaultOptions()
	segOpts.ConfThreshold = opts.ConfThreshold
	segOpts.IoUThreshold = opts.IoUThreshold
	segmenter := segmentation.NewSegmenter(c.detector, segOpts, c.logger)

	regions, err := segmenter.Segment(ctx, imageBytes, imgWidth, imgHeight)
	if err != nil {
		return nil, err
	}

	boundaries, furniture := c.partition(regions, imgWidth, imgHeight)
	c.logger.Infof("Run %s: %d furniture candidates, %d boundaries", runID, len(furniture), len(boundaries))

	clean := c.compositor.RenderClean(img)
	highlighted := make([]*image.RGBA, len(furniture))
	for i, cand := range furniture {
		highlighted[i] = c.compositor.RenderHighlighted(clean, cand.region.BBox)
	}

	if opts.SaveDebugImages {
		c.persistArtifacts(runID, opts, clean, highlighted)
	}

	objects, err := c.classifyAll(ctx, runID, opts, clean, highlighted, furniture)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:      runID,
		Objects:    objects,
		Boundaries: boundaries,
	}, nil
}

// partition splits regions by kind, attaches normalized geometry, and
// assigns identifiers. Regions whose geometry cannot be normalized are
// dropped here, before any highlight or classification work.
func (c *Coordinator) partition(regions []segmentation.Region, imgWidth, imgHeight int) ([]Boundary, []furnitureCandidate) {
	var boundaries []Boundary
	var furniture []furnitureCandidate

	for _, region := range regions {
		norm, err := geometry.ToNormalized(region.BBox, imgWidth, imgHeight)
		if err != nil {
			c.logger.Warnf("Dropping region with invalid geometry: %v", err)
			continue
		}

		switch region.Kind {
		case segmentation.KindBoundary:
			boundaries = append(boundaries, Boundary{
				ID:    fmt.Sprintf("boundary_%d", len(boundaries)),
				Class: region.Class,
				Position: Position{
					X: norm.CenterX(),
					Y: norm.CenterY(),
				},
				Dimensions: Dimensions{
					Width:  norm.Width(),
					Height: norm.Height(),
				},
				Confidence:     region.Confidence,
				BBoxNormalized: norm,
				BBoxPixels:     region.BBox,
			})
		default:
			furniture = append(furniture, furnitureCandidate{region: region, norm: norm})
		}
	}

	return boundaries, furniture
}

// persistArtifacts writes the clean image plus one highlighted image
// per furniture region. Index 0 is always the clean floorplan and
// index i+1 corresponds to furniture region i, so artifacts line up
// with the returned object list. Best effort throughout.
func (c *Coordinator) persistArtifacts(runID string, opts Options, clean image.Image, highlighted []*image.RGBA) {
	sink := c.sink
	if sink == nil {
		sink = highlight.NewDirSink(opts.DebugOutputDir, 0)
	}

	if path, err := sink.Save(runID, 0, "full_floorplan_clean", clean); err != nil {
		c.logger.Warnf("Run %s: failed to save clean debug image: %v", runID, err)
	} else if path != "" {
		c.logger.Debugf("Run %s: saved clean floorplan to %s", runID, path)
	}

	for i, img := range highlighted {
		label := fmt.Sprintf("object_%d_highlighted", i+1)
		if path, err := sink.Save(runID, i+1, label, img); err != nil {
			c.logger.Warnf("Run %s: failed to save debug image %d: %v", runID, i+1, err)
		} else if path != "" {
			c.logger.Debugf("Run %s: saved highlighted object %d to %s", runID, i+1, path)
		}
	}
}

// classifyAll issues one classification call per furniture region, in
// order. A contract violation falls back per region; an unavailable
// service falls back for the rest of the run without further calls.
func (c *Coordinator) classifyAll(ctx context.Context, runID string, opts Options, clean image.Image, highlighted []*image.RGBA, furniture []furnitureCandidate) ([]Object, error) {
	objects := make([]Object, 0, len(furniture))
	if len(furniture) == 0 {
		return objects, nil
	}

	contextJPEG, err := c.compositor.EncodeJPEG(c.compositor.DownscaleContext(clean))
	if err != nil {
		// Without a context image no call can be made; degrade the
		// whole run rather than failing it.
		c.logger.Errorf("Run %s: failed to encode context image: %v", runID, err)
		contextJPEG = nil
	}

	downReason := "No API key"
	serviceDown := !c.classifier.Available()
	if contextJPEG == nil {
		serviceDown = true
		downReason = "Classification failed: could not encode context image"
	}
	total := len(furniture)

	for i, cand := range furniture {
		var result classification.Result

		if serviceDown {
			result = classification.Sentinel(downReason)
		} else {
			highlightJPEG, encErr := c.compositor.EncodeJPEG(highlighted[i])
			if encErr != nil {
				c.logger.Warnf("Run %s: failed to encode highlight for object %d: %v", runID, i+1, encErr)
				result = classification.Sentinel(fmt.Sprintf("Classification failed: %v", encErr))
			} else {
				callCtx := ctx
				var cancel context.CancelFunc
				if opts.ClassifyTimeout > 0 {
					callCtx, cancel = context.WithTimeout(ctx, opts.ClassifyTimeout)
				}
				var clsErr error
				result, clsErr = c.classifier.ClassifyObject(callCtx, contextJPEG, highlightJPEG, cand.norm.AspectRatio())
				if cancel != nil {
					cancel()
				}
				if errors.Is(clsErr, classification.ErrServiceUnavailable) {
					c.logger.Warnf("Run %s: classification service unavailable, falling back for remaining objects", runID)
					serviceDown = true
					downReason = "Classification service unavailable"
				}
			}
		}

		objects = append(objects, c.mergeObject(i, cand, result))

		c.logger.Infof("Run %s: object %d/%d classified as %s (%s)", runID, i+1, total, result.FurnitureName, result.Confidence)
		if c.progress != nil {
			c.progress(i+1, total, result.FurnitureName, result.Confidence)
		}
	}

	return objects, nil
}

// mergeObject combines segmentation geometry with the classification
// result into the editor-facing object.
func (c *Coordinator) mergeObject(index int, cand furnitureCandidate, result classification.Result) Object {
	ft := taxonomy.Lookup(result.FurnitureID)

	return Object{
		ID:    fmt.Sprintf("obj_%d", index+1),
		Type:  result.FurnitureID,
		Name:  result.FurnitureName,
		Model: taxonomy.DefaultModelFor(result.FurnitureID),
		Position: Position{
			X: cand.norm.CenterX(),
			Y: cand.norm.CenterY(),
		},
		Dimensions: Dimensions{
			Width:  cand.norm.Width(),
			Height: cand.norm.Height(),
		},
		Rotation:       0,
		BBoxNormalized: cand.norm,
		BBoxPixels:     cand.region.BBox,
		Confidence:     result.Confidence,
		Reasoning:      result.Reasoning,
		AspectRatio: AspectRatioInfo{
			Value:       cand.norm.AspectRatio(),
			Typical:     ft.AspectRatio,
			Description: ft.Description,
		},
	}
}
