package domain

import "time"

// ProcessedImage is a validated, downsized image ready to be sent to a
// vision provider. Immutable once produced; discarded after the request.
type ProcessedImage struct {
	Data     []byte `json:"-"`
	Size     int    `json:"size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
	DataURL  string `json:"data_url"`
}

// FoodItem is one recognized or estimated food entry.
type FoodItem struct {
	Name        string     `db:"name" json:"name"`
	Quantity    float64    `db:"quantity" json:"quantity"`
	Unit        string     `db:"unit" json:"unit"`
	Calories    float64    `db:"calories" json:"calories"`
	Protein     float64    `db:"protein" json:"protein"`
	Fat         float64    `db:"fat" json:"fat"`
	Carbs       float64    `db:"carbs" json:"carbs"`
	Confidence  float64    `db:"confidence" json:"confidence"`
	Source      ItemSource `db:"source" json:"source"`
	FoodCode    string     `db:"food_code" json:"food_code,omitempty"`
	MatchedName string     `db:"matched_name" json:"matched_name,omitempty"`
}

// AnalysisResult is the output of one analysis call. Never mutated after
// return; callers that need to attach a storage URL build a new value.
type AnalysisResult struct {
	Items             []FoodItem `json:"items"`
	TotalCalories     float64    `json:"total_calories"`
	TotalProtein      float64    `json:"total_protein"`
	TotalFat          float64    `json:"total_fat"`
	TotalCarbs        float64    `json:"total_carbs"`
	OverallConfidence float64    `json:"overall_confidence"`
	Provider          string     `json:"provider"`
	Fallback          bool       `json:"fallback"`
	AnalysisID        string     `json:"analysis_id"`
	ProcessedAt       time.Time  `json:"processed_at"`
}

// CompositionRecord is one row of the food composition table, with
// nutrient values per 100 g (or per 100 of the record's base unit).
type CompositionRecord struct {
	FoodCode   string  `db:"food_code" json:"food_code"`
	Name       string  `db:"name" json:"name"`
	EnergyKcal float64 `db:"energy_kcal" json:"energy_kcal"`
	ProteinG   float64 `db:"protein_g" json:"protein_g"`
	FatG       float64 `db:"fat_g" json:"fat_g"`
	CarbsG     float64 `db:"carbs_g" json:"carbs_g"`
}
