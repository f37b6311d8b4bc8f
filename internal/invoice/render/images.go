package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"
)

// ImageSource resolves a thumbnail reference into an embeddable image.
type ImageSource interface {
	Thumbnail(ctx context.Context, ref string) (*Image, error)
}

// Fetcher loads raw bytes for a resource reference.
type Fetcher interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// ErrUnsupportedImage is returned for data that is not a decodable image.
var ErrUnsupportedImage = errors.New("unsupported_image")

type fetchedImages struct {
	fetcher Fetcher
}

// NewImageSource fetches thumbnails through f and normalizes them for
// embedding. Images are fetched one at a time, in row order.
func NewImageSource(f Fetcher) ImageSource {
	return &fetchedImages{fetcher: f}
}

func (s *fetchedImages) Thumbnail(ctx context.Context, ref string) (*Image, error) {
	data, err := s.fetcher.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return DecodeImage(ref, data)
}

// DecodeImage checks that data is an image and converts it into a form the
// PDF writer embeds reliably: baseline JPEG passes through untouched,
// everything else (PNG, GIF, WebP) is re-encoded as 8-bit PNG.
func DecodeImage(ref string, data []byte) (*Image, error) {
	cfg, kind, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedImage, ref, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: empty image", ErrUnsupportedImage, ref)
	}

	if kind == "jpeg" {
		if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedImage, ref, err)
		}
		return &Image{Ref: ref, Data: data, Format: "JPG", Width: cfg.Width, Height: cfg.Height}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedImage, ref, err)
	}
	bounds := src.Bounds()
	flat := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), src, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedImage, ref, err)
	}
	return &Image{Ref: ref, Data: buf.Bytes(), Format: "PNG", Width: bounds.Dx(), Height: bounds.Dy()}, nil
}
