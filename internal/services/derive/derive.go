package derive

import (
	"bytes"
	"fmt"
	"image"
	"time"

	"lensdrop/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// OptimizedMaxWidth caps the gallery-size rendition.
	OptimizedMaxWidth = 1920
	// ThumbnailMaxWidth caps the grid thumbnail.
	ThumbnailMaxWidth = 250

	optimizedQuality = 85
	thumbnailQuality = 80

	// RenditionContentType is the MIME type of both encoded renditions.
	RenditionContentType = "image/jpeg"

	// RenditionExt is the file extension used for derived storage keys.
	RenditionExt = "jpg"
)

// Result carries both encoded renditions plus the original's intrinsic
// dimensions.
type Result struct {
	Optimized []byte
	Thumbnail []byte
	Width     int
	Height    int
}

// Derive decodes the original image and produces a width-capped optimized
// rendition and a small thumbnail. Neither rendition is ever upscaled: an
// original narrower than the cap is re-encoded at its own width.
//
// Pure over its input; any decode or encode error propagates to the caller,
// which owns the retry/swallow policy.
func Derive(original []byte) (*Result, error) {
	const op = "derive.Derive"

	start := time.Now()

	img, err := imaging.Decode(bytes.NewReader(original))
	if err != nil {
		metrics.DerivationsTotal.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	optimized, err := encodeCapped(img, OptimizedMaxWidth, optimizedQuality)
	if err != nil {
		metrics.DerivationsTotal.WithLabelValues("encode_error").Inc()
		return nil, fmt.Errorf("%s: optimized: %w", op, err)
	}

	thumbnail, err := encodeCapped(img, ThumbnailMaxWidth, thumbnailQuality)
	if err != nil {
		metrics.DerivationsTotal.WithLabelValues("encode_error").Inc()
		return nil, fmt.Errorf("%s: thumbnail: %w", op, err)
	}

	metrics.DerivationsTotal.WithLabelValues("ok").Inc()
	metrics.DerivationDuration.Observe(time.Since(start).Seconds())

	return &Result{
		Optimized: optimized,
		Thumbnail: thumbnail,
		Width:     width,
		Height:    height,
	}, nil
}

func encodeCapped(img image.Image, maxWidth, quality int) ([]byte, error) {
	resized := img
	if img.Bounds().Dx() > maxWidth {
		// height 0 keeps the aspect ratio
		resized = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
