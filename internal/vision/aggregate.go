package vision

import (
	"math"

	"mealscan/internal/domain"
)

// Totals are the summed nutrient values of an item list plus the mean
// item confidence.
type Totals struct {
	Calories          float64
	Protein           float64
	Fat               float64
	Carbs             float64
	OverallConfidence float64
}

// Aggregate recomputes totals from scratch. Called after the initial parse
// and again after enrichment; totals are never cached across item changes.
func Aggregate(items []domain.FoodItem) Totals {
	var t Totals
	if len(items) == 0 {
		return t
	}

	var confSum float64
	for _, item := range items {
		t.Calories += item.Calories
		t.Protein += item.Protein
		t.Fat += item.Fat
		t.Carbs += item.Carbs
		confSum += item.Confidence
	}

	t.Calories = math.Round(t.Calories)
	t.Protein = round1(t.Protein)
	t.Fat = round1(t.Fat)
	t.Carbs = round1(t.Carbs)
	t.OverallConfidence = math.Round(confSum/float64(len(items))*100) / 100
	return t
}
