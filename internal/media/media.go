// Package media validates uploaded images and re-encodes them into payloads small
// enough to embed in a profile or post document.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageBytes      = 10 << 20
	MaxGIFBytes        = 150 << 10
	MaxGIFPayloadBytes = 200 << 10

	// maxPixels bounds decoded dimensions so a small file cannot expand into a huge bitmap.
	maxPixels = 60_000_000

	minQualityStep = 5
	sizeTolerance  = 1.2
)

// Options control how a static image is downsized.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64 // 0.5..1
	MaxSizeKB int
}

func DefaultOptions() Options {
	return Options{MaxWidth: 1200, MaxHeight: 1200, Quality: 0.8, MaxSizeKB: 200}
}

// Encoded is the result of processing one upload.
type Encoded struct {
	ContentType string
	Data        []byte
	Width       int
	Height      int
	Quality     float64
}

// Base64 returns the standard base64 form of Data.
func (e *Encoded) Base64() string {
	return base64.StdEncoding.EncodeToString(e.Data)
}

// DataURL returns Data as a data: URL suitable for an imageUrl field.
func (e *Encoded) DataURL() string {
	return "data:" + e.ContentType + ";base64," + e.Base64()
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxWidth <= 0 {
		o.MaxWidth = d.MaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = d.MaxHeight
	}
	if o.Quality == 0 {
		o.Quality = d.Quality
	}
	if o.MaxSizeKB <= 0 {
		o.MaxSizeKB = d.MaxSizeKB
	}
	return o
}

// Process validates data and produces the encoded payload.
// GIFs pass through unmodified so animation survives; every other raster
// format is scaled into the max box and re-encoded as JPEG.
func Process(data []byte, opts Options) (*Encoded, error) {
	opts = opts.withDefaults()
	if opts.Quality < 0.5 || opts.Quality > 1 {
		return nil, fmt.Errorf("%w: quality %.2f outside 0.5..1", ErrInvalidOptions, opts.Quality)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrInvalidFileType, mt.String())
	}

	if mt.Is("image/gif") {
		return processGIF(data)
	}
	return processStatic(data, opts)
}

func processGIF(data []byte) (*Encoded, error) {
	if len(data) > MaxGIFBytes {
		return nil, fmt.Errorf("%w: gif is %d bytes, limit %d", ErrFileTooLarge, len(data), MaxGIFBytes)
	}
	if n := base64.StdEncoding.EncodedLen(len(data)); n > MaxGIFPayloadBytes {
		return nil, fmt.Errorf("%w: encoded gif is %d bytes, limit %d", ErrFileTooLarge, n, MaxGIFPayloadBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}
	return &Encoded{
		ContentType: "image/gif",
		Data:        data,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Quality:     1,
	}, nil
}

func processStatic(data []byte, opts Options) (*Encoded, error) {
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: image is %d bytes, limit %d", ErrFileTooLarge, len(data), MaxImageBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrFileTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}

	dst := scale(src, opts.MaxWidth, opts.MaxHeight)
	limit := int(float64(opts.MaxSizeKB) * 1024 * sizeTolerance)

	var buf bytes.Buffer
	for step := int(math.Floor(opts.Quality*10 + 1e-9)); step >= minQualityStep; step-- {
		buf.Reset()
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: step * 10}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
		if buf.Len() <= limit {
			return &Encoded{
				ContentType: "image/jpeg",
				Data:        bytes.Clone(buf.Bytes()),
				Width:       dst.Bounds().Dx(),
				Height:      dst.Bounds().Dy(),
				Quality:     float64(step) / 10,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %d bytes at minimum quality, limit %d", ErrCompressionInsufficient, buf.Len(), limit)
}

// FitWithin returns w x h scaled down, aspect preserved, to fit maxW x maxH.
// Images already inside the box keep their size.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*ratio+0.5))
	nh := max(1, int(float64(h)*ratio+0.5))
	return min(nw, maxW), min(nh, maxH)
}

func scale(src image.Image, maxW, maxH int) *image.RGBA {
	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	// JPEG has no alpha channel; flatten transparency onto white.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
