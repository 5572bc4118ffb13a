package vision

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"mealscan/internal/domain"
)

// NormalizeOptions holds the heuristic constants of the normalizer. The
// macro shares are a deliberate, documented approximation of a typical
// meal's energy split (protein 15%, fat 25%, carbs 60% of calories),
// kept configurable rather than re-derived.
type NormalizeOptions struct {
	DefaultConfidence     float64
	DescriptionConfidence float64
	GenericConfidence     float64
	GenericCalories       float64
	ProteinCalorieShare   float64
	FatCalorieShare       float64
	CarbCalorieShare      float64
}

// DefaultNormalizeOptions returns the standard heuristic constants.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		DefaultConfidence:     0.6,
		DescriptionConfidence: 0.55,
		GenericConfidence:     0.5,
		GenericCalories:       300,
		ProteinCalorieShare:   0.15,
		FatCalorieShare:       0.25,
		CarbCalorieShare:      0.60,
	}
}

// geminiEnvelope is the candidate/part shape of a Gemini response. Only the
// text segments matter here.
type geminiEnvelope struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Normalize extracts food items from a raw provider response. It never
// fails: when nothing usable can be parsed it falls back to items derived
// from the description, then to a single generic item. The second return
// reports whether any non-model estimation path was used.
//
// Deterministic for identical input; all randomness in this system lives
// in the retry jitter and in test doubles.
func Normalize(raw []byte, description string, opts NormalizeOptions) ([]domain.FoodItem, bool) {
	for _, text := range candidateTexts(raw) {
		if payload, ok := parsePayload(text); ok {
			if items := itemsFromPayload(payload, opts); len(items) > 0 {
				return items, false
			}
		}
	}

	if items := ItemsFromDescription(description, opts); len(items) > 0 {
		return items, true
	}
	return []domain.FoodItem{GenericItem(opts)}, true
}

// candidateTexts walks the provider's candidate/part structure collecting
// every text segment. A body that is not an envelope is treated as one
// text segment itself, so plain-text responses still get parsed.
func candidateTexts(raw []byte) []string {
	var texts []string

	var env geminiEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		for _, cand := range env.Candidates {
			for _, part := range cand.Content.Parts {
				if strings.TrimSpace(part.Text) != "" {
					texts = append(texts, part.Text)
				}
			}
		}
	}

	if len(texts) == 0 && len(raw) > 0 {
		texts = append(texts, string(raw))
	}
	return texts
}

// parsePayload tries strict JSON first, then a lenient pass that strips
// markdown fences and extracts the first {...} span. Models wrap JSON in
// prose often enough that the second stage earns its keep.
func parsePayload(text string) (interface{}, bool) {
	text = strings.TrimSpace(text)

	var payload interface{}
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		return payload, true
	}

	stripped := stripMarkdownFences(text)
	if stripped != text {
		if err := json.Unmarshal([]byte(stripped), &payload); err == nil {
			return payload, true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err == nil {
			return payload, true
		}
	}

	return nil, false
}

func stripMarkdownFences(text string) string {
	start := strings.Index(text, "```")
	if start == -1 {
		return text
	}
	rest := text[start+3:]
	end := strings.Index(rest, "```")
	if end == -1 {
		return text
	}
	content := strings.TrimSpace(rest[:end])
	// Drop a leading language identifier line ("json")
	if nl := strings.Index(content, "\n"); nl != -1 {
		if first := strings.TrimSpace(content[:nl]); first == "json" {
			content = content[nl+1:]
		}
	}
	return strings.TrimSpace(content)
}

// itemsFromPayload locates the item array under any of the accepted keys
// and coerces each entry. Schema drift is expected, not exceptional.
func itemsFromPayload(payload interface{}, opts NormalizeOptions) []domain.FoodItem {
	var rawItems []interface{}

	switch p := payload.(type) {
	case []interface{}:
		rawItems = p
	case map[string]interface{}:
		for _, key := range []string{"items", "foods"} {
			if arr, ok := p[key].([]interface{}); ok {
				rawItems = arr
				break
			}
		}
	}

	items := make([]domain.FoodItem, 0, len(rawItems))
	for _, raw := range rawItems {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if item, ok := coerceItem(entry, opts); ok {
			items = append(items, item)
		}
	}
	return items
}

// Accepted field aliases, tried in order. Nested "nutrition" objects are
// flattened by lookupNumber.
var (
	caloriesKeys = []string{"calories", "calories_kcal", "kcal", "energy", "energy_kcal", "cal"}
	proteinKeys  = []string{"protein", "protein_g", "proteins"}
	fatKeys      = []string{"fat", "fat_g", "fats", "lipid"}
	carbKeys     = []string{"carbs", "carbs_g", "carbohydrates", "carbohydrate", "carb"}
	nameKeys     = []string{"name", "food", "food_name", "label", "title"}
	quantityKeys = []string{"quantity", "amount", "qty", "weight", "portion"}
	unitKeys     = []string{"unit", "units"}
	confKeys     = []string{"confidence", "confidence_score", "score"}
)

// nutritionAliases maps top-level macro keys to the aliases accepted inside
// a nested "nutrition" object.
var nutritionAliases = map[string][]string{
	"calories": {"kcal", "calories", "energy"},
	"protein":  {"protein", "protein_g"},
	"fat":      {"fat", "fat_g"},
	"carbs":    {"carbs", "carbohydrates", "carbs_g"},
}

// coerceItem normalizes one candidate entry into a FoodItem. Missing
// calories become 0; an item is dropped only when its calories are present
// but unparsable, so no output item carries NaN.
func coerceItem(entry map[string]interface{}, opts NormalizeOptions) (domain.FoodItem, bool) {
	calories, present, ok := lookupNumber(entry, caloriesKeys, nutritionAliases["calories"])
	if present && !ok {
		return domain.FoodItem{}, false
	}
	if !present {
		calories = 0
	}
	calories = clampNonNegative(calories)

	item := domain.FoodItem{
		Name:     lookupString(entry, nameKeys, "不明な食品"),
		Quantity: 100,
		Unit:     lookupString(entry, unitKeys, "g"),
		Calories: math.Round(calories),
		Source:   domain.SourceModel,
	}

	if qty, present, ok := lookupNumber(entry, quantityKeys, nil); present && ok && qty > 0 {
		item.Quantity = qty
	}

	item.Protein = macroOrShare(entry, proteinKeys, nutritionAliases["protein"], calories, opts.ProteinCalorieShare, 4)
	item.Fat = macroOrShare(entry, fatKeys, nutritionAliases["fat"], calories, opts.FatCalorieShare, 9)
	item.Carbs = macroOrShare(entry, carbKeys, nutritionAliases["carbs"], calories, opts.CarbCalorieShare, 4)

	item.Confidence = normalizeConfidence(entry, opts.DefaultConfidence)

	return item, true
}

// macroOrShare reads a macro field, deriving it from calories via the
// fixed energy share (kcalPerGram converts share of calories to grams)
// when the field is absent or unparsable.
func macroOrShare(entry map[string]interface{}, keys, nested []string, calories, share, kcalPerGram float64) float64 {
	if v, present, ok := lookupNumber(entry, keys, nested); present && ok {
		return round1(clampNonNegative(v))
	}
	return round1(calories * share / kcalPerGram)
}

// normalizeConfidence coerces the confidence field into [0,1]. Values above
// 1 are assumed to be percentages; non-positive or missing values get the
// default.
func normalizeConfidence(entry map[string]interface{}, fallback float64) float64 {
	v, present, ok := lookupNumber(entry, confKeys, nil)
	if !present || !ok || v <= 0 {
		return fallback
	}
	if v > 1 {
		v /= 100
	}
	if v > 1 {
		v = 1
	}
	return v
}

// lookupNumber finds the first alias present in entry (then in a nested
// "nutrition" object) and coerces it to a number. Strings are parsed;
// objects with a "value" field are unwrapped. Returns (value, present, ok):
// present means some alias existed, ok means it coerced cleanly.
func lookupNumber(entry map[string]interface{}, keys, nestedKeys []string) (float64, bool, bool) {
	for _, key := range keys {
		if raw, exists := entry[key]; exists {
			v, ok := coerceNumber(raw)
			return v, true, ok
		}
	}
	if nested, ok := entry["nutrition"].(map[string]interface{}); ok {
		for _, key := range nestedKeys {
			if raw, exists := nested[key]; exists {
				v, ok := coerceNumber(raw)
				return v, true, ok
			}
		}
	}
	return 0, false, false
}

func coerceNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case string:
		s := strings.TrimSpace(v)
		// Strip a trailing unit like "250kcal" or "4.5 g"
		s = strings.TrimRight(s, "kcalgm ")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case map[string]interface{}:
		if inner, exists := v["value"]; exists {
			return coerceNumber(inner)
		}
		return 0, false
	default:
		return 0, false
	}
}

func lookupString(entry map[string]interface{}, keys []string, fallback string) string {
	for _, key := range keys {
		if s, ok := entry[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
