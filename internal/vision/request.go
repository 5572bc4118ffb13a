package vision

import (
	"encoding/base64"
	"time"

	"mealscan/internal/domain"
	"mealscan/internal/port"
)

// maxDescriptionLen bounds the free-text description carried in a request.
const maxDescriptionLen = 500

// GenerationOptions are the numeric generation parameters for one request.
type GenerationOptions struct {
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// DefaultGenerationOptions returns the documented defaults: near-deterministic
// sampling and a 20s hard timeout for the vision call.
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Temperature:     0.1,
		MaxOutputTokens: 2048,
		Timeout:         20 * time.Second,
	}
}

// BuildAnalysisRequest turns a processed image and optional description into
// a provider request. Pure transformation; no side effects.
func BuildAnalysisRequest(img *domain.ProcessedImage, description string, opts GenerationOptions) port.AnalysisRequest {
	description = truncateRunes(description, maxDescriptionLen)
	return port.AnalysisRequest{
		Prompt:          BuildPrompt(description),
		ImageData:       base64.StdEncoding.EncodeToString(img.Data),
		MimeType:        img.MimeType,
		Description:     description,
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
		Timeout:         opts.Timeout,
	}
}

func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
