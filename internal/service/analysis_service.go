package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"mealscan/internal/config"
	"mealscan/internal/domain"
	"mealscan/internal/enrich"
	"mealscan/internal/metrics"
	"mealscan/internal/port"
	"mealscan/internal/vision"
)

// AnalyzeOutput carries the analysis result plus the best-effort photo
// URL. The result itself never references storage.
type AnalyzeOutput struct {
	Result   *domain.AnalysisResult `json:"result"`
	PhotoURL string                 `json:"photo_url,omitempty"`
}

// AnalysisService runs the full photo-to-food-list pipeline.
type AnalysisService interface {
	// Analyze turns a processed image plus optional description into an
	// annotated food list. Provider failures propagate; unusable model
	// output does not.
	Analyze(ctx context.Context, img *domain.ProcessedImage, description string) (*domain.AnalysisResult, error)

	// AnalyzeUpload prepares raw upload bytes, persists the photo best
	// effort, and runs Analyze.
	AnalyzeUpload(ctx context.Context, data []byte, description string) (*AnalyzeOutput, error)
}

type analysisService struct {
	client    *vision.Client
	enricher  *enrich.Enricher
	processor port.ImageProcessor
	storage   port.ObjectStorage
	s3cfg     *config.S3Config
	genOpts   vision.GenerationOptions
	normOpts  vision.NormalizeOptions
}

// NewAnalysisService creates the pipeline service. storage may be nil
// (photos are then not persisted); the enricher handles a nil repository
// itself.
func NewAnalysisService(
	client *vision.Client,
	enricher *enrich.Enricher,
	processor port.ImageProcessor,
	storage port.ObjectStorage,
	s3cfg *config.S3Config,
	genOpts vision.GenerationOptions,
	normOpts vision.NormalizeOptions,
) AnalysisService {
	return &analysisService{
		client:    client,
		enricher:  enricher,
		processor: processor,
		storage:   storage,
		s3cfg:     s3cfg,
		genOpts:   genOpts,
		normOpts:  normOpts,
	}
}

func (s *analysisService) Analyze(ctx context.Context, img *domain.ProcessedImage, description string) (*domain.AnalysisResult, error) {
	start := time.Now()

	req := vision.BuildAnalysisRequest(img, description, s.genOpts)

	raw, err := s.client.Analyze(ctx, req)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	items, fellBack := vision.Normalize(raw, description, s.normOpts)
	items = s.enricher.Enrich(ctx, items)
	totals := vision.Aggregate(items)

	result := &domain.AnalysisResult{
		Items:             items,
		TotalCalories:     totals.Calories,
		TotalProtein:      totals.Protein,
		TotalFat:          totals.Fat,
		TotalCarbs:        totals.Carbs,
		OverallConfidence: totals.OverallConfidence,
		Provider:          s.client.Provider(),
		Fallback:          fellBack,
		AnalysisID:        newAnalysisID(),
		ProcessedAt:       time.Now().UTC(),
	}

	metrics.AnalysisDurationSeconds.Observe(time.Since(start).Seconds())
	if fellBack {
		metrics.AnalysesTotal.WithLabelValues("fallback").Inc()
	} else {
		metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	}
	return result, nil
}

func (s *analysisService) AnalyzeUpload(ctx context.Context, data []byte, description string) (*AnalyzeOutput, error) {
	img, err := s.processor.Process(data)
	if err != nil {
		return nil, err
	}

	photoURL := s.storePhoto(ctx, img)

	result, err := s.Analyze(ctx, img, description)
	if err != nil {
		return nil, err
	}

	return &AnalyzeOutput{Result: result, PhotoURL: photoURL}, nil
}

// storePhoto uploads the processed image and returns a presigned URL.
// Failures are logged and swallowed: the photo is a side artifact, not an
// input to the analysis.
func (s *analysisService) storePhoto(ctx context.Context, img *domain.ProcessedImage) string {
	if s.storage == nil || s.s3cfg == nil || !s.s3cfg.Enabled() {
		return ""
	}

	key := fmt.Sprintf("meals/%s/%s.jpg", time.Now().UTC().Format("2006/01/02"), uuid.New().String())
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(img.Data),
		ContentType: img.MimeType,
		Size:        int64(img.Size),
	})
	if err != nil {
		log.Printf("analysisService: photo upload failed: %v", err)
		return ""
	}

	url, err := s.storage.GetPresignedURL(ctx, s.s3cfg.Bucket, key, s.s3cfg.PresignExpiry)
	if err != nil {
		log.Printf("analysisService: photo presign failed: %v", err)
		return ""
	}
	return url
}

// newAnalysisID builds an opaque time-based identifier, unique per call.
func newAnalysisID() string {
	return fmt.Sprintf("ma_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}
