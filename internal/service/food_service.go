package service

import (
	"context"
	"strings"

	"mealscan/internal/domain"
	"mealscan/internal/port"
)

// FoodService exposes manual composition database lookups, independent of
// the analysis pipeline.
type FoodService interface {
	Search(ctx context.Context, query string, limit int) ([]domain.CompositionRecord, error)
	GetByCode(ctx context.Context, foodCode string) (*domain.CompositionRecord, error)
}

type foodService struct {
	repo port.CompositionRepository
}

// NewFoodService creates a FoodService over the composition repository.
func NewFoodService(repo port.CompositionRepository) FoodService {
	return &foodService{repo: repo}
}

func (s *foodService) Search(ctx context.Context, query string, limit int) ([]domain.CompositionRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.CompositionRecord{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.repo.Search(ctx, query, limit)
}

func (s *foodService) GetByCode(ctx context.Context, foodCode string) (*domain.CompositionRecord, error) {
	return s.repo.GetByCode(ctx, foodCode)
}
