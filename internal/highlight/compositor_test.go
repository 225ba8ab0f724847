package highlight

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"floorplan-extractor/internal/geometry"
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func TestRenderHighlighted(t *testing.T) {
	c := NewCompositor(DefaultOptions())
	src := whiteImage(100, 100)
	box := geometry.PixelBBox{X1: 30, Y1: 30, X2: 70, Y2: 70}

	out := c.RenderHighlighted(src, box)

	if out.Bounds() != src.Bounds() {
		t.Fatalf("highlight must keep full image dimensions, got %v", out.Bounds())
	}

	// Center of the box: white blended with translucent orange.
	r, g, b, _ := out.At(50, 50).RGBA()
	if r>>8 != 255 {
		t.Errorf("fill should keep red channel saturated, got %d", r>>8)
	}
	if g>>8 >= 250 || b>>8 >= 250 {
		t.Errorf("fill should tint green/blue channels, got g=%d b=%d", g>>8, b>>8)
	}

	// Padded box is 26..74; the border strip sits just inside it.
	r, g, b, _ = out.At(27, 50).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("expected solid red border at (27,50), got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}

	// Outside the padded box everything stays untouched.
	r, g, b, _ = out.At(10, 10).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("pixel outside highlight changed: rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}

	// Source image is not mutated.
	r, g, b, _ = src.At(50, 50).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Error("source image was mutated")
	}
}

func TestRenderHighlightedEdgeBox(t *testing.T) {
	c := NewCompositor(DefaultOptions())
	src := whiteImage(100, 100)
	box := geometry.PixelBBox{X1: 0, Y1: 0, X2: 40, Y2: 40}

	// Must not panic and must stay within bounds when padding clamps.
	out := c.RenderHighlighted(src, box)
	if out.Bounds() != src.Bounds() {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
}

func TestRenderCleanIdentity(t *testing.T) {
	c := NewCompositor(DefaultOptions())
	src := whiteImage(10, 10)
	if c.RenderClean(src) != image.Image(src) {
		t.Error("RenderClean must pass the source through unchanged")
	}
}

func TestDownscaleContext(t *testing.T) {
	c := NewCompositor(DefaultOptions())

	t.Run("large image shrinks to max side", func(t *testing.T) {
		src := whiteImage(1024, 768)
		out := c.DownscaleContext(src)
		if out.Bounds().Dx() != 512 {
			t.Errorf("expected width 512, got %d", out.Bounds().Dx())
		}
		if out.Bounds().Dy() != 384 {
			t.Errorf("expected height 384, got %d", out.Bounds().Dy())
		}
	})

	t.Run("tall image scales by height", func(t *testing.T) {
		src := whiteImage(600, 1200)
		out := c.DownscaleContext(src)
		if out.Bounds().Dy() != 512 {
			t.Errorf("expected height 512, got %d", out.Bounds().Dy())
		}
	})

	t.Run("small image passes through", func(t *testing.T) {
		src := whiteImage(200, 100)
		if out := c.DownscaleContext(src); out != image.Image(src) {
			t.Error("small image should not be rescaled")
		}
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := NewCompositor(DefaultOptions())
	src := whiteImage(64, 48)

	data, err := c.EncodeJPEG(src)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	img, w, h, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if w != 64 || h != 48 {
		t.Errorf("expected 64x48, got %dx%d", w, h)
	}
	if img == nil {
		t.Error("decoded image is nil")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, _, _, err := Decode([]byte("not an image")); err == nil {
		t.Error("expected decode error for garbage input")
	}
}
