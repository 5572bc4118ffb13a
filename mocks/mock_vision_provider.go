package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mealscan/internal/port"
)

// MockVisionProvider is a mock implementation of port.VisionProvider.
type MockVisionProvider struct {
	mock.Mock
}

func (m *MockVisionProvider) Generate(ctx context.Context, req port.AnalysisRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockVisionProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
