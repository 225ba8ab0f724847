package highlight

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
)

// ArtifactSink receives the debug images produced during an extraction
// run. Persistence is diagnostic only: a failing sink is logged by the
// caller and never aborts the pipeline.
type ArtifactSink interface {
	// Save writes one image as NN_label.jpg under the run's directory
	// and returns the written path.
	Save(runID string, index int, label string, img image.Image) (string, error)
}

// DirSink writes artifacts under baseDir/runID/. Each run gets its own
// timestamped directory, so concurrent runs never collide.
type DirSink struct {
	baseDir string
	quality int
}

func NewDirSink(baseDir string, jpegQuality int) *DirSink {
	if jpegQuality <= 0 {
		jpegQuality = 90
	}
	return &DirSink{baseDir: baseDir, quality: jpegQuality}
}

func (s *DirSink) Save(runID string, index int, label string, img image.Image) (string, error) {
	dir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%02d_%s.jpg", index, label))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return "", fmt.Errorf("failed to encode artifact: %w", err)
	}

	return path, nil
}

// NopSink discards artifacts; used when debug images are disabled and
// in tests.
type NopSink struct{}

func (NopSink) Save(runID string, index int, label string, img image.Image) (string, error) {
	return "", nil
}
