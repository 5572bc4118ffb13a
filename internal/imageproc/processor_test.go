package imageproc_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealscan/internal/config"
	"mealscan/internal/domain"
	"mealscan/internal/imageproc"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestProcess_SmallImagePassesThrough(t *testing.T) {
	p := imageproc.NewProcessor(&config.ImageConfig{MaxUploadMB: 10, MaxDimension: 1280, JPEGQuality: 80})

	out, err := p.Process(encodePNG(t, 100, 50))
	require.NoError(t, err)

	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 50, out.Height)
	assert.Equal(t, "image/jpeg", out.MimeType)
	assert.Equal(t, len(out.Data), out.Size)
	assert.True(t, strings.HasPrefix(out.DataURL, "data:image/jpeg;base64,"))

	// Output must itself be a decodable JPEG.
	decoded, format, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, decoded.Bounds().Dx())
}

func TestProcess_DownscalesPreservingAspectRatio(t *testing.T) {
	p := imageproc.NewProcessor(&config.ImageConfig{MaxUploadMB: 10, MaxDimension: 10, JPEGQuality: 80})

	out, err := p.Process(encodePNG(t, 100, 50))
	require.NoError(t, err)

	assert.Equal(t, 10, out.Width)
	assert.Equal(t, 5, out.Height)
}

func TestProcess_PortraitDownscale(t *testing.T) {
	p := imageproc.NewProcessor(&config.ImageConfig{MaxUploadMB: 10, MaxDimension: 20, JPEGQuality: 80})

	out, err := p.Process(encodePNG(t, 40, 80))
	require.NoError(t, err)

	assert.Equal(t, 10, out.Width)
	assert.Equal(t, 20, out.Height)
}

func TestProcess_AcceptsJPEGInput(t *testing.T) {
	p := imageproc.NewProcessor(&config.ImageConfig{})

	out, err := p.Process(encodeJPEG(t, 64, 64))
	require.NoError(t, err)
	assert.Equal(t, 64, out.Width)
	assert.Equal(t, "image/jpeg", out.MimeType)
}

func TestProcess_EmptyInput(t *testing.T) {
	p := imageproc.NewProcessor(&config.ImageConfig{})

	_, err := p.Process(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyImage)
}

func TestProcess_OversizedInput(t *testing.T) {
	p := imageproc.NewProcessor(&config.ImageConfig{MaxUploadMB: 1})

	big := make([]byte, 2<<20)
	_, err := p.Process(big)
	assert.ErrorIs(t, err, domain.ErrImageTooLarge)
}

func TestProcess_UnsupportedType(t *testing.T) {
	p := imageproc.NewProcessor(&config.ImageConfig{})

	_, err := p.Process([]byte("%PDF-1.4 not an image at all"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedImageType)
}

func TestProcess_TruncatedImageData(t *testing.T) {
	p := imageproc.NewProcessor(&config.ImageConfig{})

	data := encodePNG(t, 100, 100)
	_, err := p.Process(data[:40])
	assert.ErrorIs(t, err, domain.ErrUnsupportedImageType)
}
