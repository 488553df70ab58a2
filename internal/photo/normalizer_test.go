package photo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"fka/internal/cache"
)

func solid(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// withOrientation inserts a minimal APP1 Exif segment carrying the given
// orientation tag right after the SOI marker of a JPEG.
func withOrientation(t *testing.T, jpg []byte, orientation uint16) []byte {
	t.Helper()
	if len(jpg) < 2 || jpg[0] != 0xFF || jpg[1] != 0xD8 {
		t.Fatalf("not a jpeg")
	}
	tiff := []byte{
		'M', 'M', 0x00, 0x2A, // big-endian header
		0x00, 0x00, 0x00, 0x08, // IFD0 offset
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, // Orientation, SHORT, count 1
		byte(orientation >> 8), byte(orientation), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	size := len(payload) + 2

	var out bytes.Buffer
	out.Write(jpg[:2])
	out.Write([]byte{0xFF, 0xE1, byte(size >> 8), byte(size)})
	out.Write(payload)
	out.Write(jpg[2:])
	return out.Bytes()
}

func TestReadOrientationFromExif(t *testing.T) {
	base := encodeJPEG(t, solid(8, 4))
	for o := uint16(1); o <= 8; o++ {
		if got := ReadOrientation(withOrientation(t, base, o)); got != int(o) {
			t.Errorf("ReadOrientation() = %d, want %d", got, o)
		}
	}
}

func TestNormalizeAppliesExifBeforeLandscapeCheck(t *testing.T) {
	// Stored landscape, but orientation 6 means the camera was held upright.
	data := withOrientation(t, encodeJPEG(t, solid(400, 300)), 6)

	out, err := NewNormalizer().Normalize(context.Background(), data)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out.Orientation != 6 {
		t.Errorf("Orientation = %d, want 6", out.Orientation)
	}
	if out.Rotated {
		t.Errorf("image upright after EXIF must not be rotated again")
	}
	if out.Width != 300 || out.Height != 400 {
		t.Errorf("output = %dx%d, want 300x400", out.Width, out.Height)
	}
}

func TestNormalizeLandscapeIsRotatedAndScaled(t *testing.T) {
	n := NewNormalizer()
	out, err := n.Normalize(context.Background(), encodeJPEG(t, solid(1800, 1200)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if !out.Rotated {
		t.Errorf("landscape image should be rotated")
	}
	if out.Width >= out.Height {
		t.Errorf("expected portrait output, got %dx%d", out.Width, out.Height)
	}
	if out.Width > PrintMaxWidth || out.Height > PrintMaxHeight {
		t.Errorf("output %dx%d exceeds print raster", out.Width, out.Height)
	}
	// 1800x1200 rotated is 1200x1800; height is the binding bound.
	if out.Height != PrintMaxHeight || out.Width < 1141 || out.Width > 1142 {
		t.Errorf("output = %dx%d, want about 1142x%d", out.Width, out.Height, PrintMaxHeight)
	}
	if b := out.Image.Bounds(); b.Dx() != out.Width || b.Dy() != out.Height {
		t.Errorf("tracked size %dx%d differs from bitmap %dx%d", out.Width, out.Height, b.Dx(), b.Dy())
	}
}

func TestNormalizeSmallLandscapeSwapsWithoutUpscaling(t *testing.T) {
	out, err := NewNormalizer().Normalize(context.Background(), encodePNG(t, solid(400, 200)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out.Width != 200 || out.Height != 400 {
		t.Errorf("output = %dx%d, want 200x400", out.Width, out.Height)
	}
}

func TestNormalizePortraitIsNotRotated(t *testing.T) {
	out, err := NewNormalizer().Normalize(context.Background(), encodeJPEG(t, solid(300, 500)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out.Rotated || out.Width != 300 || out.Height != 500 {
		t.Errorf("got rotated=%v %dx%d, want unrotated 300x500", out.Rotated, out.Width, out.Height)
	}
	if out.Orientation != 1 {
		t.Errorf("image without EXIF should be treated as upright, got %d", out.Orientation)
	}
}

func TestNormalizeSquareIsNotRotated(t *testing.T) {
	out, err := NewNormalizer().Normalize(context.Background(), encodePNG(t, solid(64, 64)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out.Rotated {
		t.Errorf("square image must not be rotated")
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	if _, err := NewNormalizer().Normalize(context.Background(), []byte("not an image")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNormalizeUsesCache(t *testing.T) {
	c := cache.NewLRUCache[*Normalized](4, 0)
	n := NewNormalizer(WithCache(c))
	data := encodePNG(t, solid(40, 30))

	first, err := n.Normalize(context.Background(), data)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := n.Normalize(context.Background(), data)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if first != second {
		t.Errorf("second call should be served from cache")
	}
	if s := c.Stats(); s.Hits != 1 {
		t.Errorf("cache hits = %d, want 1", s.Hits)
	}
}

func TestNormalizeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewNormalizer().Normalize(ctx, encodePNG(t, solid(10, 10))); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestReadOrientationWithoutMetadata(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"png", encodePNG(t, solid(2, 2))},
		{"jpeg without exif", encodeJPEG(t, solid(2, 2))},
		{"garbage", []byte{0xff, 0xd8, 0xff, 0xe1, 0x00, 0x10, 'E', 'x', 'i', 'f'}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadOrientation(tt.data); got != 1 {
				t.Errorf("ReadOrientation() = %d, want 1", got)
			}
		})
	}
}

func TestApplyOrientation(t *testing.T) {
	src := solid(4, 2)
	src.Set(0, 0, color.NRGBA{R: 255, A: 255}) // marker in the top-left corner

	tests := []struct {
		orientation int
		wantW       int
		wantH       int
		markerX     int
		markerY     int
	}{
		{1, 4, 2, 0, 0},
		{2, 4, 2, 3, 0},
		{3, 4, 2, 3, 1},
		{4, 4, 2, 0, 1},
		{5, 2, 4, 0, 0},
		{6, 2, 4, 1, 0},
		{7, 2, 4, 1, 3},
		{8, 2, 4, 0, 3},
		{42, 4, 2, 0, 0},
	}
	for _, tt := range tests {
		out := ApplyOrientation(src, tt.orientation)
		b := out.Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("orientation %d: size %dx%d, want %dx%d", tt.orientation, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			continue
		}
		r, g, _, _ := out.At(b.Min.X+tt.markerX, b.Min.Y+tt.markerY).RGBA()
		if r>>8 != 255 || g>>8 != 0 {
			t.Errorf("orientation %d: marker not at (%d,%d)", tt.orientation, tt.markerX, tt.markerY)
		}
	}
}

func TestFitToPage(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"wide", 1240, 900},
		{"tall", 1142, 1713},
		{"both too large, width binds", 1240, 1000},
		{"inside box", 500, 700},
		{"exact box", 575, 802},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw, fh := FitToPage(tt.w, tt.h, PageBoxWidth, PageBoxHeight)
			if fw > PageBoxWidth+1e-9 || fh > PageBoxHeight+1e-9 {
				t.Errorf("FitToPage(%v, %v) = %v x %v exceeds box", tt.w, tt.h, fw, fh)
			}
			if math.Abs(fw/fh-tt.w/tt.h) > 1e-9 {
				t.Errorf("aspect changed: %v vs %v", fw/fh, tt.w/tt.h)
			}
			if tt.w <= PageBoxWidth && tt.h <= PageBoxHeight && (fw != tt.w || fh != tt.h) {
				t.Errorf("image inside the box must not be scaled")
			}
		})
	}
}

func TestPageSize(t *testing.T) {
	n := &Normalized{Width: 1142, Height: 1713}
	w, h := n.PageSize()
	if h != PageBoxHeight || w > PageBoxWidth {
		t.Errorf("PageSize() = %v x %v", w, h)
	}
}
