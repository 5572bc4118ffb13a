package port

import (
	"context"

	"mealscan/internal/domain"
)

// CompositionRepository defines read-only access to the food composition
// database. Search is a case-insensitive substring match returning up to
// limit records ordered by the repository's own relevance ranking.
type CompositionRepository interface {
	Search(ctx context.Context, term string, limit int) ([]domain.CompositionRecord, error)
	GetByCode(ctx context.Context, foodCode string) (*domain.CompositionRecord, error)
}
