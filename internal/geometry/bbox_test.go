package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestToNormalized(t *testing.T) {
	tests := []struct {
		name      string
		box       PixelBBox
		w, h      int
		want      BBox
		expectErr bool
	}{
		{
			name: "simple box",
			box:  PixelBBox{X1: 100, Y1: 50, X2: 300, Y2: 150},
			w:    1000, h: 500,
			want: BBox{X1: 0.1, Y1: 0.1, X2: 0.3, Y2: 0.3},
		},
		{
			name: "full image",
			box:  PixelBBox{X1: 0, Y1: 0, X2: 640, Y2: 480},
			w:    640, h: 480,
			want: BBox{X1: 0, Y1: 0, X2: 1, Y2: 1},
		},
		{
			name: "slight overshoot clamped",
			box:  PixelBBox{X1: 0, Y1: 0, X2: 642, Y2: 480},
			w:    640, h: 480,
			want: BBox{X1: 0, Y1: 0, X2: 1, Y2: 1},
		},
		{
			name: "zero width image",
			box:  PixelBBox{X1: 0, Y1: 0, X2: 10, Y2: 10},
			w:    0, h: 480,
			expectErr: true,
		},
		{
			name: "inverted box",
			box:  PixelBBox{X1: 300, Y1: 50, X2: 100, Y2: 150},
			w:    1000, h: 500,
			expectErr: true,
		},
		{
			name: "far outside image",
			box:  PixelBBox{X1: 0, Y1: 0, X2: 2000, Y2: 100},
			w:    640, h: 480,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToNormalized(tt.box, tt.w, tt.h)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if !errors.Is(err, ErrInvalidGeometry) {
					t.Errorf("expected ErrInvalidGeometry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bboxAlmostEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	boxes := []PixelBBox{
		{X1: 0, Y1: 0, X2: 100, Y2: 100},
		{X1: 13, Y1: 27, X2: 301, Y2: 99},
		{X1: 5, Y1: 5, X2: 639, Y2: 479},
		{X1: 333, Y1: 111, X2: 335, Y2: 400},
	}

	const w, h = 640, 480
	for _, box := range boxes {
		norm, err := ToNormalized(box, w, h)
		if err != nil {
			t.Fatalf("ToNormalized(%+v): %v", box, err)
		}
		back, err := ToPixels(norm, w, h)
		if err != nil {
			t.Fatalf("ToPixels(%+v): %v", norm, err)
		}

		if absInt(back.X1-box.X1) > 1 || absInt(back.Y1-box.Y1) > 1 ||
			absInt(back.X2-box.X2) > 1 || absInt(back.Y2-box.Y2) > 1 {
			t.Errorf("round trip %+v -> %+v exceeds 1px tolerance", box, back)
		}
	}
}

func TestExpandWithPadding(t *testing.T) {
	const w, h = 1000, 1000

	t.Run("contains original and grows", func(t *testing.T) {
		box := PixelBBox{X1: 100, Y1: 100, X2: 300, Y2: 200}
		expanded := ExpandWithPadding(box, 0.10, w, h)

		if expanded.X1 > box.X1 || expanded.Y1 > box.Y1 || expanded.X2 < box.X2 || expanded.Y2 < box.Y2 {
			t.Errorf("expanded box %+v does not contain original %+v", expanded, box)
		}
		if expanded.Area() <= box.Area() {
			t.Errorf("expanded area %d not greater than original %d", expanded.Area(), box.Area())
		}

		want := PixelBBox{X1: 80, Y1: 90, X2: 320, Y2: 210}
		if expanded != want {
			t.Errorf("got %+v, want %+v", expanded, want)
		}
	})

	t.Run("clamped at image edge", func(t *testing.T) {
		box := PixelBBox{X1: 0, Y1: 0, X2: 999, Y2: 999}
		expanded := ExpandWithPadding(box, 0.10, w, h)

		if expanded.X1 != 0 || expanded.Y1 != 0 || expanded.X2 != w || expanded.Y2 != h {
			t.Errorf("expected clamp to image bounds, got %+v", expanded)
		}
	})

	t.Run("zero padding is identity", func(t *testing.T) {
		box := PixelBBox{X1: 100, Y1: 100, X2: 300, Y2: 200}
		if got := ExpandWithPadding(box, 0, w, h); got != box {
			t.Errorf("got %+v, want %+v", got, box)
		}
	})
}

func TestOverlapRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b PixelBBox
		want float64
	}{
		{
			name: "disjoint",
			a:    PixelBBox{X1: 0, Y1: 0, X2: 10, Y2: 10},
			b:    PixelBBox{X1: 20, Y1: 20, X2: 30, Y2: 30},
			want: 0,
		},
		{
			name: "contained",
			a:    PixelBBox{X1: 0, Y1: 0, X2: 100, Y2: 100},
			b:    PixelBBox{X1: 25, Y1: 25, X2: 75, Y2: 75},
			want: 1,
		},
		{
			name: "half of smaller",
			a:    PixelBBox{X1: 0, Y1: 0, X2: 100, Y2: 100},
			b:    PixelBBox{X1: 50, Y1: 0, X2: 150, Y2: 50},
			want: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverlapRatio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestAspectRatio(t *testing.T) {
	wide := BBox{X1: 0, Y1: 0, X2: 0.4, Y2: 0.1}
	if got := wide.AspectRatio(); math.Abs(got-4.0) > 0.001 {
		t.Errorf("expected 4.0, got %f", got)
	}

	degenerate := BBox{X1: 0, Y1: 0.5, X2: 0.4, Y2: 0.5}
	if got := degenerate.AspectRatio(); got != 1.0 {
		t.Errorf("expected fallback 1.0 for zero height, got %f", got)
	}
}

func bboxAlmostEqual(a, b BBox) bool {
	const eps = 0.0001
	return math.Abs(a.X1-b.X1) < eps && math.Abs(a.Y1-b.Y1) < eps &&
		math.Abs(a.X2-b.X2) < eps && math.Abs(a.Y2-b.Y2) < eps
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
