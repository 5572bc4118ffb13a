package vision

import (
	"math"
	"strings"

	"mealscan/internal/domain"
)

// ItemsFromDescription synthesizes one low-confidence item per non-empty
// line of the user's description. Used when the model output yields
// nothing usable but the user told us what they ate.
func ItemsFromDescription(description string, opts NormalizeOptions) []domain.FoodItem {
	var items []domain.FoodItem
	for _, line := range strings.Split(description, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		item := estimatedItem(name, opts.GenericCalories, opts)
		item.Confidence = opts.DescriptionConfidence
		items = append(items, item)
	}
	return items
}

// GenericItem is the last resort: a single plausible meal entry with
// deliberately low confidence. The pipeline never returns zero items.
func GenericItem(opts NormalizeOptions) domain.FoodItem {
	item := estimatedItem("食事（推定）", opts.GenericCalories, opts)
	item.Confidence = opts.GenericConfidence
	return item
}

func estimatedItem(name string, calories float64, opts NormalizeOptions) domain.FoodItem {
	return domain.FoodItem{
		Name:     name,
		Quantity: 100,
		Unit:     "g",
		Calories: math.Round(calories),
		Protein:  round1(calories * opts.ProteinCalorieShare / 4),
		Fat:      round1(calories * opts.FatCalorieShare / 9),
		Carbs:    round1(calories * opts.CarbCalorieShare / 4),
		Source:   domain.SourceFallback,
	}
}
