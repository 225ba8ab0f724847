// Package geometry holds the pure coordinate transforms shared by the
// extraction pipeline: pixel-space bounding boxes from the segmentation
// service, normalized [0,1] boxes stored on extracted objects, and the
// padding expansion used when drawing highlights.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned when a box or image dimension is
// degenerate (non-positive size, non-finite values, inverted corners).
var ErrInvalidGeometry = errors.New("invalid geometry")

// clampTolerance absorbs rounding overshoot when normalizing pixel
// coordinates; anything further outside [0,1] is an error, not a clamp.
const clampTolerance = 0.01

// PixelBBox is an axis-aligned box in source image pixel space.
// Invariant: X1 < X2 and Y1 < Y2.
type PixelBBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// BBox is the same box with every coordinate divided by the image
// dimension, so each field lies in [0,1].
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (b PixelBBox) Width() int  { return b.X2 - b.X1 }
func (b PixelBBox) Height() int { return b.Y2 - b.Y1 }
func (b PixelBBox) Area() int   { return b.Width() * b.Height() }

func (b BBox) Width() float64  { return b.X2 - b.X1 }
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// CenterX and CenterY give the normalized center used as the object's
// placement position.
func (b BBox) CenterX() float64 { return (b.X1 + b.X2) / 2 }
func (b BBox) CenterY() float64 { return (b.Y1 + b.Y2) / 2 }

// AspectRatio is width over height, 1.0 for a degenerate height.
func (b BBox) AspectRatio() float64 {
	if b.Height() <= 0 {
		return 1.0
	}
	return b.Width() / b.Height()
}

// Valid reports whether the pixel box is usable: proper corner ordering
// and more than one pixel on each axis.
func (b PixelBBox) Valid() bool {
	return b.X2 > b.X1+1 && b.Y2 > b.Y1+1
}

// ToNormalized converts a pixel box into normalized coordinates.
// Values that overshoot [0,1] within clampTolerance are clamped; larger
// excursions mean the box and image dimensions disagree.
func ToNormalized(box PixelBBox, imgWidth, imgHeight int) (BBox, error) {
	if imgWidth <= 0 || imgHeight <= 0 {
		return BBox{}, fmt.Errorf("%w: image dimensions %dx%d", ErrInvalidGeometry, imgWidth, imgHeight)
	}
	if box.X2 <= box.X1 || box.Y2 <= box.Y1 {
		return BBox{}, fmt.Errorf("%w: inverted or empty box %+v", ErrInvalidGeometry, box)
	}

	norm := BBox{
		X1: float64(box.X1) / float64(imgWidth),
		Y1: float64(box.Y1) / float64(imgHeight),
		X2: float64(box.X2) / float64(imgWidth),
		Y2: float64(box.Y2) / float64(imgHeight),
	}

	coords := []*float64{&norm.X1, &norm.Y1, &norm.X2, &norm.Y2}
	for _, c := range coords {
		if math.IsNaN(*c) || math.IsInf(*c, 0) {
			return BBox{}, fmt.Errorf("%w: non-finite coordinate in %+v", ErrInvalidGeometry, box)
		}
		if *c < -clampTolerance || *c > 1+clampTolerance {
			return BBox{}, fmt.Errorf("%w: coordinate %f outside [0,1] for %dx%d image", ErrInvalidGeometry, *c, imgWidth, imgHeight)
		}
		*c = math.Max(0, math.Min(1, *c))
	}

	return norm, nil
}

// ToPixels is the inverse of ToNormalized, rounding to the nearest
// integer pixel.
func ToPixels(box BBox, imgWidth, imgHeight int) (PixelBBox, error) {
	if imgWidth <= 0 || imgHeight <= 0 {
		return PixelBBox{}, fmt.Errorf("%w: image dimensions %dx%d", ErrInvalidGeometry, imgWidth, imgHeight)
	}
	if box.X2 <= box.X1 || box.Y2 <= box.Y1 {
		return PixelBBox{}, fmt.Errorf("%w: inverted or empty box %+v", ErrInvalidGeometry, box)
	}

	return PixelBBox{
		X1: int(math.Round(box.X1 * float64(imgWidth))),
		Y1: int(math.Round(box.Y1 * float64(imgHeight))),
		X2: int(math.Round(box.X2 * float64(imgWidth))),
		Y2: int(math.Round(box.Y2 * float64(imgHeight))),
	}, nil
}

// ExpandWithPadding grows the box by paddingFraction of its own width
// and height on each side, clamped to the image bounds. The highlight
// border is drawn on the expanded box so it sits outside the object's
// true silhouette instead of covering its edge.
func ExpandWithPadding(box PixelBBox, paddingFraction float64, imgWidth, imgHeight int) PixelBBox {
	padX := int(float64(box.Width()) * paddingFraction)
	padY := int(float64(box.Height()) * paddingFraction)

	expanded := PixelBBox{
		X1: box.X1 - padX,
		Y1: box.Y1 - padY,
		X2: box.X2 + padX,
		Y2: box.Y2 + padY,
	}

	if expanded.X1 < 0 {
		expanded.X1 = 0
	}
	if expanded.Y1 < 0 {
		expanded.Y1 = 0
	}
	if expanded.X2 > imgWidth {
		expanded.X2 = imgWidth
	}
	if expanded.Y2 > imgHeight {
		expanded.Y2 = imgHeight
	}

	return expanded
}

// OverlapRatio returns the intersection area divided by the area of the
// smaller box. Unlike IoU this flags full containment (a chair entirely
// inside a table's box) as a 1.0 overlap.
func OverlapRatio(a, b PixelBBox) float64 {
	ix1 := max(a.X1, b.X1)
	iy1 := max(a.Y1, b.Y1)
	ix2 := min(a.X2, b.X2)
	iy2 := min(a.Y2, b.Y2)

	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}

	intersection := (ix2 - ix1) * (iy2 - iy1)
	smaller := min(a.Area(), b.Area())
	if smaller <= 0 {
		return 0
	}

	return float64(intersection) / float64(smaller)
}
