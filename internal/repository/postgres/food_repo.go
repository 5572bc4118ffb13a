package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"mealscan/internal/domain"
	"mealscan/internal/port"
)

type foodRepo struct {
	db *sqlx.DB
}

// NewFoodRepo creates a new PostgreSQL-backed CompositionRepository.
func NewFoodRepo(db *sqlx.DB) port.CompositionRepository {
	return &foodRepo{db: db}
}

// Search performs a case-insensitive substring match on food names.
// Ranking: earlier match position first, then shorter names, so an exact
// or near-exact name beats a record that merely contains the term.
func (r *foodRepo) Search(ctx context.Context, term string, limit int) ([]domain.CompositionRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	var records []domain.CompositionRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT food_code, name, energy_kcal, protein_g, fat_g, carbs_g
		 FROM food_composition
		 WHERE name ILIKE '%' || $1 || '%'
		 ORDER BY POSITION(LOWER($1) IN LOWER(name)), LENGTH(name), food_code
		 LIMIT $2`,
		term, limit)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *foodRepo) GetByCode(ctx context.Context, foodCode string) (*domain.CompositionRecord, error) {
	var record domain.CompositionRecord
	err := r.db.GetContext(ctx, &record,
		`SELECT food_code, name, energy_kcal, protein_g, fat_g, carbs_g
		 FROM food_composition
		 WHERE food_code = $1`,
		foodCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
