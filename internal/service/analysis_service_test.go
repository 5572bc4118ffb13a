package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mealscan/internal/config"
	"mealscan/internal/domain"
	"mealscan/internal/enrich"
	"mealscan/internal/port"
	"mealscan/internal/service"
	"mealscan/internal/vision"
	"mealscan/mocks"
)

func geminiResponse(t *testing.T, itemsJSON string) []byte {
	t.Helper()
	envelope := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": itemsJSON}},
				},
			},
		},
	}
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	return raw
}

func processedImage() *domain.ProcessedImage {
	return &domain.ProcessedImage{
		Data:     []byte("jpeg-bytes"),
		Size:     10,
		Width:    640,
		Height:   480,
		MimeType: "image/jpeg",
	}
}

func newService(provider *mocks.MockVisionProvider, processor port.ImageProcessor, storage port.ObjectStorage, s3cfg *config.S3Config) service.AnalysisService {
	client := vision.NewClient(provider, vision.RetryPolicy{MaxAttempts: 1}, nil)
	enricher := enrich.NewEnricher(nil, enrich.DefaultOptions())
	return service.NewAnalysisService(
		client,
		enricher,
		processor,
		storage,
		s3cfg,
		vision.DefaultGenerationOptions(),
		vision.DefaultNormalizeOptions(),
	)
}

func TestAnalyze_ReturnsAnnotatedItems(t *testing.T) {
	provider := new(mocks.MockVisionProvider)
	provider.On("Name").Return("gemini")
	provider.On("Generate", mock.Anything, mock.Anything).
		Return(geminiResponse(t, `{"items":[
			{"name":"ご飯","quantity":150,"unit":"g","calories":252,"protein":3.8,"fat":0.5,"carbs":55.7,"confidence":0.9},
			{"name":"味噌汁","quantity":200,"unit":"ml","calories":40,"protein":2.5,"fat":1.2,"carbs":4.5,"confidence":0.8}
		]}`), nil)

	svc := newService(provider, nil, nil, nil)

	result, err := svc.Analyze(context.Background(), processedImage(), "朝ごはん")
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "ご飯", result.Items[0].Name)
	assert.Equal(t, domain.SourceModel, result.Items[0].Source)
	assert.Equal(t, 292.0, result.TotalCalories)
	assert.InDelta(t, 0.85, result.OverallConfidence, 0.001)
	assert.Equal(t, "gemini", result.Provider)
	assert.False(t, result.Fallback)
	assert.NotEmpty(t, result.AnalysisID)
	assert.False(t, result.ProcessedAt.IsZero())
}

func TestAnalyze_UnusableModelOutputFallsBack(t *testing.T) {
	provider := new(mocks.MockVisionProvider)
	provider.On("Name").Return("gemini")
	provider.On("Generate", mock.Anything, mock.Anything).
		Return(geminiResponse(t, "I cannot identify any food in this image."), nil)

	svc := newService(provider, nil, nil, nil)

	result, err := svc.Analyze(context.Background(), processedImage(), "")
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	require.NotEmpty(t, result.Items)
	assert.Equal(t, domain.SourceFallback, result.Items[0].Source)
	assert.Greater(t, result.TotalCalories, 0.0)
}

func TestAnalyze_ProviderFailurePropagates(t *testing.T) {
	provider := new(mocks.MockVisionProvider)
	provider.On("Name").Return("gemini")
	provider.On("Generate", mock.Anything, mock.Anything).
		Return(nil, &domain.ProviderError{Provider: "gemini", StatusCode: http.StatusServiceUnavailable})

	svc := newService(provider, nil, nil, nil)

	result, err := svc.Analyze(context.Background(), processedImage(), "")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
}

func TestAnalyzeUpload_ProcessesAndAnalyzes(t *testing.T) {
	provider := new(mocks.MockVisionProvider)
	provider.On("Name").Return("gemini")
	provider.On("Generate", mock.Anything, mock.Anything).
		Return(geminiResponse(t, `{"items":[{"name":"サラダ","quantity":120,"calories":35,"confidence":0.7}]}`), nil)

	processor := new(mocks.MockImageProcessor)
	raw := []byte("raw-upload")
	processor.On("Process", raw).Return(processedImage(), nil)

	svc := newService(provider, processor, nil, nil)

	out, err := svc.AnalyzeUpload(context.Background(), raw, "ランチ")
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	assert.Equal(t, "", out.PhotoURL)
	assert.Len(t, out.Result.Items, 1)
	processor.AssertExpectations(t)
}

func TestAnalyzeUpload_RejectsBadImage(t *testing.T) {
	processor := new(mocks.MockImageProcessor)
	processor.On("Process", mock.Anything).Return(nil, domain.ErrUnsupportedImageType)

	provider := new(mocks.MockVisionProvider)
	svc := newService(provider, processor, nil, nil)

	_, err := svc.AnalyzeUpload(context.Background(), []byte("not an image"), "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedImageType)
	provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestAnalyzeUpload_StoresPhotoAndPresigns(t *testing.T) {
	provider := new(mocks.MockVisionProvider)
	provider.On("Name").Return("gemini")
	provider.On("Generate", mock.Anything, mock.Anything).
		Return(geminiResponse(t, `{"items":[{"name":"カレー","quantity":300,"calories":600,"confidence":0.8}]}`), nil)

	processor := new(mocks.MockImageProcessor)
	processor.On("Process", mock.Anything).Return(processedImage(), nil)

	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "meal-photos" && in.ContentType == "image/jpeg"
	})).Return(&port.UploadOutput{}, nil)
	storage.On("GetPresignedURL", mock.Anything, "meal-photos", mock.Anything, int64(3600)).
		Return("https://example.com/signed", nil)

	s3cfg := &config.S3Config{Region: "ap-northeast-1", Bucket: "meal-photos", PresignExpiry: 3600}
	svc := newService(provider, processor, storage, s3cfg)

	out, err := svc.AnalyzeUpload(context.Background(), []byte("raw"), "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/signed", out.PhotoURL)
	storage.AssertExpectations(t)
}

func TestAnalyzeUpload_UploadFailureDoesNotBlockAnalysis(t *testing.T) {
	provider := new(mocks.MockVisionProvider)
	provider.On("Name").Return("gemini")
	provider.On("Generate", mock.Anything, mock.Anything).
		Return(geminiResponse(t, `{"items":[{"name":"うどん","quantity":250,"calories":300,"confidence":0.8}]}`), nil)

	processor := new(mocks.MockImageProcessor)
	processor.On("Process", mock.Anything).Return(processedImage(), nil)

	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("bucket unavailable"))

	s3cfg := &config.S3Config{Region: "ap-northeast-1", Bucket: "meal-photos", PresignExpiry: 3600}
	svc := newService(provider, processor, storage, s3cfg)

	out, err := svc.AnalyzeUpload(context.Background(), []byte("raw"), "")
	require.NoError(t, err)
	assert.Equal(t, "", out.PhotoURL)
	require.Len(t, out.Result.Items, 1)
	storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_AnalysisIDsAreUnique(t *testing.T) {
	provider := new(mocks.MockVisionProvider)
	provider.On("Name").Return("gemini")
	provider.On("Generate", mock.Anything, mock.Anything).
		Return(geminiResponse(t, `{"items":[{"name":"ご飯","quantity":150,"calories":250,"confidence":0.9}]}`), nil)

	svc := newService(provider, nil, nil, nil)

	first, err := svc.Analyze(context.Background(), processedImage(), "")
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), processedImage(), "")
	require.NoError(t, err)

	assert.NotEqual(t, first.AnalysisID, second.AnalysisID)
}
