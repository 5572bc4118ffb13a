package vision

import "fmt"

// analysisPrompt fixes the output shape the model is expected to produce.
// Models violate this contract often enough that the normalizer treats
// the schema as advisory.
const analysisPrompt = `You are a nutrition analysis assistant. Look at the meal photo and identify every food item you can see.

Output rules:
* Respond with a single valid JSON object and nothing else — no markdown, no prose.
* All food names must be in Japanese.
* Estimate portion sizes in grams unless another unit is clearly more natural (e.g. 個, 杯).
* Estimate calories and macros for the portion shown, not per 100 g.
* confidence is your certainty for that item, between 0.0 and 1.0.

Output schema:
{
  "items": [
    {
      "name": "<food name in Japanese>",
      "quantity": <number>,
      "unit": "<g | ml | 個 | 杯 | ...>",
      "calories": <kcal, number>,
      "protein": <grams, number>,
      "fat": <grams, number>,
      "carbs": <grams, number>,
      "confidence": <0.0-1.0>
    }
  ]
}`

// BuildPrompt returns the analysis instruction, appending the user's
// free-text description as extra context when present.
func BuildPrompt(description string) string {
	if description == "" {
		return analysisPrompt
	}
	return fmt.Sprintf("%s\n\nThe user describes the meal as: %s", analysisPrompt, description)
}
