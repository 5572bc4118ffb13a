package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mealscan/internal/domain"
	"mealscan/internal/service"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, img *domain.ProcessedImage, description string) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, img, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisService) AnalyzeUpload(ctx context.Context, data []byte, description string) (*service.AnalyzeOutput, error) {
	args := m.Called(ctx, data, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalyzeOutput), args.Error(1)
}
