package mocks

import (
	"github.com/stretchr/testify/mock"

	"mealscan/internal/domain"
)

// MockImageProcessor is a mock implementation of port.ImageProcessor.
type MockImageProcessor struct {
	mock.Mock
}

func (m *MockImageProcessor) Process(data []byte) (*domain.ProcessedImage, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedImage), args.Error(1)
}
