package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

var (
	ErrImageTooLarge    = errors.New("image exceeds the size limit")
	ErrNotAnImage       = errors.New("not a decodable image")
	ErrFormatNotAllowed = errors.New("image format not allowed")
)

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

var extensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"bmp":  "bmp",
	"tiff": "tif",
}

// Picture is an upload ready to be stored.
type Picture struct {
	Data        []byte
	Format      string
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// ImageProcessor checks uploaded pictures and shrinks oversized ones.
type ImageProcessor struct {
	MaxSize      int64 // bytes
	MaxDimension int   // px, longest side
	MaxPixels    int64 // width * height accepted for decoding
}

func NewImageProcessor(maxSize int64, maxDimension int, maxPixels int64) *ImageProcessor {
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	if maxDimension <= 0 {
		maxDimension = 1600
	}
	if maxPixels <= 0 {
		maxPixels = 24_000_000
	}
	return &ImageProcessor{MaxSize: maxSize, MaxDimension: maxDimension, MaxPixels: maxPixels}
}

// Prepare decodes data, rejects non-images and downsizes anything whose
// longest side exceeds MaxDimension, keeping the original format.
// The pixel budget is checked from the header, before any full decode.
func (p *ImageProcessor) Prepare(data []byte) (*Picture, error) {
	if int64(len(data)) > p.MaxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	ct, ok := contentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormatNotAllowed, format)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > p.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	pic := &Picture{
		Data:        data,
		Format:      format,
		ContentType: ct,
		Ext:         extensions[format],
		Width:       cfg.Width,
		Height:      cfg.Height,
	}

	if cfg.Width <= p.MaxDimension && cfg.Height <= p.MaxDimension {
		// Full decode still has to succeed; a valid header alone is not enough.
		if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
		}
		return pic, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	resized := imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)

	imgFormat, err := imaging.FormatFromExtension(pic.Ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFormatNotAllowed, format)
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, imgFormat, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}

	pic.Data = buf.Bytes()
	pic.Width = resized.Bounds().Dx()
	pic.Height = resized.Bounds().Dy()
	return pic, nil
}
