// Package enrich replaces model-estimated nutrient values with verified
// figures from the food composition database. Best effort throughout:
// a missing or failing database never blocks an analysis.
package enrich

import (
	"context"
	"log"
	"math"
	"strings"
	"sync"

	"mealscan/internal/domain"
	"mealscan/internal/metrics"
	"mealscan/internal/port"
)

// Options holds the enrichment constants. MinConfidence is the floor a
// verified match raises an item's confidence to; it never lowers an
// existing higher value.
type Options struct {
	CandidateLimit int
	MinConfidence  float64
}

// DefaultOptions returns the standard enrichment constants.
func DefaultOptions() Options {
	return Options{
		CandidateLimit: 5,
		MinConfidence:  0.9,
	}
}

// Enricher performs composition database enrichment.
type Enricher struct {
	repo port.CompositionRepository
	opts Options
}

// NewEnricher creates an enricher. A nil repo disables enrichment; items
// then pass through unchanged.
func NewEnricher(repo port.CompositionRepository, opts Options) *Enricher {
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = 5
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = 0.9
	}
	return &Enricher{repo: repo, opts: opts}
}

// Enrich looks up each item in the composition database and replaces its
// macros with verified per-100 values scaled by quantity. Lookups for
// separate items have no ordering dependency, so they fan out
// concurrently and join before return. Items already enriched are left
// alone, which makes a second pass a no-op.
func (e *Enricher) Enrich(ctx context.Context, items []domain.FoodItem) []domain.FoodItem {
	if e.repo == nil || len(items) == 0 {
		return items
	}

	enriched := make([]domain.FoodItem, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		if item.Source == domain.SourceDatabase {
			enriched[i] = item
			continue
		}
		wg.Add(1)
		go func(i int, item domain.FoodItem) {
			defer wg.Done()
			enriched[i] = e.enrichOne(ctx, item)
		}(i, item)
	}
	wg.Wait()

	return enriched
}

// enrichOne tries the item's search terms in order and applies the first
// match. Query errors are swallowed: the item passes through unenriched.
func (e *Enricher) enrichOne(ctx context.Context, item domain.FoodItem) domain.FoodItem {
	for _, term := range SearchTerms(item.Name) {
		records, err := e.repo.Search(ctx, term, e.opts.CandidateLimit)
		if err != nil {
			metrics.EnrichmentLookupsTotal.WithLabelValues("error").Inc()
			log.Printf("enrich.Enricher: lookup %q failed: %v", term, err)
			return item
		}
		if len(records) == 0 {
			continue
		}
		metrics.EnrichmentLookupsTotal.WithLabelValues("matched").Inc()
		return applyRecord(item, &records[0], e.opts.MinConfidence)
	}
	metrics.EnrichmentLookupsTotal.WithLabelValues("unmatched").Inc()
	return item
}

// SearchTerms derives the ordered candidate search terms for a food name:
// the trimmed name, the name without a trailing parenthetical, and the
// name with internal whitespace removed. Duplicates are dropped.
func SearchTerms(name string) []string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}

	candidates := []string{
		trimmed,
		stripParenthetical(trimmed),
		stripWhitespace(trimmed),
	}

	seen := make(map[string]bool, len(candidates))
	terms := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		terms = append(terms, c)
	}
	return terms
}

// stripParenthetical removes a trailing parenthesized suffix, covering
// both ASCII and fullwidth Japanese parentheses.
func stripParenthetical(s string) string {
	for _, open := range []string{"（", "("} {
		if idx := strings.Index(s, open); idx > 0 {
			return strings.TrimSpace(s[:idx])
		}
	}
	return s
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// applyRecord scales the record's per-100 values by the item quantity and
// overwrites the item's macros. Provenance moves to the database and the
// confidence floor applies.
func applyRecord(item domain.FoodItem, rec *domain.CompositionRecord, minConfidence float64) domain.FoodItem {
	multiplier := 1.0
	if item.Quantity > 0 {
		multiplier = item.Quantity / 100
	}

	item.Calories = round1(rec.EnergyKcal * multiplier)
	item.Protein = round1(rec.ProteinG * multiplier)
	item.Fat = round1(rec.FatG * multiplier)
	item.Carbs = round1(rec.CarbsG * multiplier)
	item.Source = domain.SourceDatabase
	item.FoodCode = rec.FoodCode
	item.MatchedName = rec.Name
	if item.Confidence < minConfidence {
		item.Confidence = minConfidence
	}
	return item
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
