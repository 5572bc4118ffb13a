package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"mealscan/internal/config"
	"mealscan/internal/domain"
	"mealscan/internal/port"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	providerName = "gemini"
)

// Provider implements port.VisionProvider using Google's Gemini API.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewProvider creates a Gemini-backed vision provider.
func NewProvider(cfg *config.VisionConfig) *Provider {
	return newProvider(cfg, "")
}

// NewProviderWithEndpoint creates a provider pointing at a custom API
// endpoint (for testing).
func NewProviderWithEndpoint(cfg *config.VisionConfig, endpoint string) *Provider {
	return newProvider(cfg, endpoint)
}

func newProvider(cfg *config.VisionConfig, endpoint string) *Provider {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{},
	}
}

func (p *Provider) Name() string {
	return providerName
}

// Generate sends one generateContent call and returns the raw response
// body. The deadline cancels the in-flight request, so nothing keeps
// running after the caller has given up; a timeout is classified as
// retryable, non-2xx statuses per their class.
func (p *Provider) Generate(ctx context.Context, req port.AnalysisRequest) ([]byte, error) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = p.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"inline_data": map[string]interface{}{
							"mime_type": req.MimeType,
							"data":      req.ImageData,
						},
					},
					{
						"text": req.Prompt,
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"temperature":      req.Temperature,
			"maxOutputTokens":  req.MaxOutputTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, domain.NewTimeoutError(providerName, err)
		}
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
