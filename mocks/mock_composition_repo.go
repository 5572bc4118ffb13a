package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mealscan/internal/domain"
)

// MockCompositionRepo is a mock implementation of port.CompositionRepository.
type MockCompositionRepo struct {
	mock.Mock
}

func (m *MockCompositionRepo) Search(ctx context.Context, term string, limit int) ([]domain.CompositionRecord, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompositionRecord), args.Error(1)
}

func (m *MockCompositionRepo) GetByCode(ctx context.Context, foodCode string) (*domain.CompositionRecord, error) {
	args := m.Called(ctx, foodCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompositionRecord), args.Error(1)
}
