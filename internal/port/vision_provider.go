package port

import (
	"context"
	"time"
)

// AnalysisRequest carries one fully built vision request: schema-fixing
// prompt, inline image data, and generation parameters.
type AnalysisRequest struct {
	Prompt          string
	ImageData       string // base64-encoded image bytes
	MimeType        string
	Description     string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// VisionProvider abstracts a single vision-model backend. Generate returns
// the raw response body; no schema is guaranteed, the normalizer deals
// with whatever comes back. Failures are classified as *domain.ProviderError.
type VisionProvider interface {
	Generate(ctx context.Context, req AnalysisRequest) ([]byte, error)
	Name() string
}
