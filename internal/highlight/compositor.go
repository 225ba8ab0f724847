// Package highlight renders the per-object context images sent to the
// vision classifier: the clean floorplan plus, for each furniture
// region, a full-scene copy with that one region emphasized. Isolated
// crops were tried first and destroyed classification accuracy; the
// full scene keeps walls, doors and neighboring furniture visible.
package highlight

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"floorplan-extractor/internal/geometry"
)

// Options controls the highlight rendering.
type Options struct {
	// PaddingFraction grows the highlighted box on each side so the
	// border sits outside the object's silhouette.
	PaddingFraction float64
	// FillColor is drawn over the padded box; its alpha is the
	// highlight opacity.
	FillColor color.NRGBA
	// BorderColor is the solid frame around the padded box.
	BorderColor color.NRGBA
	// BorderWidth is the frame thickness in pixels.
	BorderWidth int
	// ContextMaxSide bounds the longest side of the downscaled clean
	// image sent as low-detail context.
	ContextMaxSide int
	// JPEGQuality for encoded artifacts.
	JPEGQuality int
}

// DefaultOptions: 10% padding, 30% orange fill, 3px red border.
func DefaultOptions() Options {
	return Options{
		PaddingFraction: 0.10,
		FillColor:       color.NRGBA{R: 255, G: 100, B: 0, A: 77},
		BorderColor:     color.NRGBA{R: 255, G: 0, B: 0, A: 255},
		BorderWidth:     3,
		ContextMaxSide:  512,
		JPEGQuality:     90,
	}
}

// Compositor renders clean and highlighted floorplan images.
type Compositor struct {
	opts Options
}

func NewCompositor(opts Options) *Compositor {
	return &Compositor{opts: opts}
}

// Decode parses raster bytes (JPEG or PNG) into an image and its
// dimensions.
func Decode(imageBytes []byte) (image.Image, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	return img, bounds.Dx(), bounds.Dy(), nil
}

// RenderClean is the identity step for the source raster. It exists as
// a named operation because the clean image is the first item in every
// classification request and the first artifact persisted.
func (c *Compositor) RenderClean(src image.Image) image.Image {
	return src
}

// RenderHighlighted copies the full image and emphasizes one region:
// a translucent fill over the padded bounding box and a solid border
// around it. Everything else stays untouched.
func (c *Compositor) RenderHighlighted(src image.Image, box geometry.PixelBBox) *image.RGBA {
	bounds := src.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, src, bounds.Min, draw.Src)

	padded := geometry.ExpandWithPadding(box, c.opts.PaddingFraction, bounds.Dx(), bounds.Dy())
	rect := image.Rect(padded.X1, padded.Y1, padded.X2, padded.Y2).Add(bounds.Min)

	draw.Draw(out, rect, image.NewUniform(c.opts.FillColor), image.Point{}, draw.Over)
	c.drawBorder(out, rect)

	return out
}

// drawBorder frames rect with four solid strips. draw.Draw clips at the
// image bounds, so edge-touching boxes keep a partial frame.
func (c *Compositor) drawBorder(dst *image.RGBA, rect image.Rectangle) {
	w := c.opts.BorderWidth
	src := image.NewUniform(c.opts.BorderColor)

	top := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+w)
	bottom := image.Rect(rect.Min.X, rect.Max.Y-w, rect.Max.X, rect.Max.Y)
	left := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+w, rect.Max.Y)
	right := image.Rect(rect.Max.X-w, rect.Min.Y, rect.Max.X, rect.Max.Y)

	for _, side := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(dst, side, src, image.Point{}, draw.Src)
	}
}

// DownscaleContext shrinks the clean image so its longest side is at
// most ContextMaxSide, for the low-detail context slot. Smaller images
// pass through unchanged.
func (c *Compositor) DownscaleContext(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	maxSide := c.opts.ContextMaxSide
	if maxSide <= 0 || (width <= maxSide && height <= maxSide) {
		return src
	}

	scale := float64(maxSide) / float64(width)
	if height > width {
		scale = float64(maxSide) / float64(height)
	}
	dstW := int(float64(width) * scale)
	dstH := int(float64(height) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	return dst
}

// EncodeJPEG serializes an image for the classifier payload and the
// debug artifacts.
func (c *Compositor) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.opts.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
