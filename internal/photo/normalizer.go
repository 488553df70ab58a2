// Package photo turns receipt photos into upright, print-sized bitmaps that
// fit a portrait page.
package photo

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"fka/internal/cache"
	"fka/internal/log"
)

const (
	// Print raster, roughly 150 dpi on A4.
	PrintMaxWidth  = 1240
	PrintMaxHeight = 1713

	// Page content box in points.
	PageBoxWidth  = 575
	PageBoxHeight = 802

	DefaultSharpenSigma = 0.7
	DefaultJPEGQuality  = 85
)

// Normalized is the final bitmap with its true post-transform size.
type Normalized struct {
	Image       image.Image
	Width       int
	Height      int
	Orientation int  // EXIF orientation that was applied
	Rotated     bool // landscape source turned 90° counter-clockwise
}

// PageSize returns the placement size on the page in points.
func (n *Normalized) PageSize() (float64, float64) {
	return FitToPage(float64(n.Width), float64(n.Height), PageBoxWidth, PageBoxHeight)
}

type Normalizer struct {
	cache        cache.Cache[*Normalized]
	sharpenSigma float64
	logger       *log.Logger
}

type Option func(*Normalizer)

// WithCache reuses results for byte-identical inputs.
func WithCache(c cache.Cache[*Normalized]) Option {
	return func(n *Normalizer) { n.cache = c }
}

func WithSharpenSigma(sigma float64) Option {
	return func(n *Normalizer) { n.sharpenSigma = sigma }
}

func WithLogger(l *log.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{sharpenSigma: DefaultSharpenSigma}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = log.Discard()
	}
	n.logger = n.logger.WithComponent(log.ComponentPhoto)
	return n
}

// Normalize decodes data, applies the EXIF orientation, turns landscape
// images into portrait, scales down to the print raster and sharpens.
// The orientation is applied before the landscape check because it can swap
// width and height.
func (n *Normalizer) Normalize(ctx context.Context, data []byte) (*Normalized, error) {
	var key string
	if n.cache != nil {
		key = cache.ContentKey(data)
		if hit, ok := n.cache.Get(key); ok {
			n.logger.DebugContext(ctx, "Normalized image served from cache", log.FieldBytes, len(data))
			return hit, nil
		}
	}

	start := time.Now()
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orientation := ReadOrientation(data)
	img = ApplyOrientation(img, orientation)

	b := img.Bounds()
	rotated := b.Dx() > b.Dy()
	if rotated {
		img = imaging.Rotate90(img)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fitted := imaging.Fit(img, PrintMaxWidth, PrintMaxHeight, imaging.Lanczos)
	final := imaging.Sharpen(fitted, n.sharpenSigma)

	out := &Normalized{
		Image:       final,
		Width:       final.Bounds().Dx(),
		Height:      final.Bounds().Dy(),
		Orientation: orientation,
		Rotated:     rotated,
	}

	n.logger.DebugContext(ctx, "Image normalized",
		log.FieldWidth, out.Width,
		log.FieldHeight, out.Height,
		"orientation", orientation,
		"rotated", rotated,
		log.FieldDuration, time.Since(start).Milliseconds())

	if n.cache != nil {
		n.cache.Set(key, out)
	}
	return out, nil
}

// EncodeJPEG encodes the bitmap for embedding into a PDF page.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
