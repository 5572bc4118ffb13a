// Package imageproc validates and downsizes user-uploaded meal photos
// into bounded-size assets ready for inline base64 transport.
package imageproc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"mealscan/internal/config"
	"mealscan/internal/domain"
	"mealscan/internal/port"
)

// Processor implements port.ImageProcessor.
type Processor struct {
	maxBytes     int64
	maxDimension int
	jpegQuality  int
}

// NewProcessor creates a processor from image config, applying the
// documented defaults for zero values.
func NewProcessor(cfg *config.ImageConfig) port.ImageProcessor {
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	maxDim := cfg.MaxDimension
	if maxDim <= 0 {
		maxDim = 1280
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Processor{
		maxBytes:     maxMB << 20,
		maxDimension: maxDim,
		jpegQuality:  quality,
	}
}

// Process decodes, downsizes, and recompresses the image. The result is
// always a JPEG regardless of the input format.
func (p *Processor) Process(data []byte) (*domain.ProcessedImage, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyImage
	}
	if int64(len(data)) > p.maxBytes {
		return nil, domain.ErrImageTooLarge
	}

	contentType := http.DetectContentType(data)
	if _, ok := domain.AllowedImageTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImageType, contentType)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding failed: %v", domain.ErrUnsupportedImageType, err)
	}

	img = p.downscale(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	encoded := buf.Bytes()
	bounds := img.Bounds()
	return &domain.ProcessedImage{
		Data:     encoded,
		Size:     len(encoded),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: "image/jpeg",
		DataURL:  "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(encoded),
	}, nil
}

// downscale shrinks the image so its longest edge fits maxDimension,
// preserving aspect ratio. Images already within bounds pass through.
func (p *Processor) downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= p.maxDimension {
		return img
	}

	scale := float64(p.maxDimension) / float64(longest)
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
