package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/macroplan/v1/internal/ports/inbound"
)

// PromptOptions tune one composition run.
type PromptOptions struct {
	Mode           inbound.SuggestionMode
	AllowNewFoods  bool
	ExcludeFoodIDs []int64
	Preferences    string
}

// Composer renders the mode-specific instructions handed to the provider.
type Composer struct{}

// NewComposer creates a prompt composer.
func NewComposer() *Composer {
	return &Composer{}
}

// candidateLine is the serialized shape of one catalog food inside the prompt.
type candidateLine struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ServingSize string  `json:"serving_size"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber"`
}

// Compose renders the full prompt for one suggestion run. The candidate list
// is the only legal source of existing food ids; every hard numeric ceiling
// is stated explicitly so the model can self-check.
func (c *Composer) Compose(nctx *NutritionContext, candidates []nutrition.FoodItem, opts PromptOptions) string {
	var b strings.Builder

	b.WriteString("You are a professional nutritionist helping plan a meal.\n\n")

	fmt.Fprintf(&b, "MEAL: %q (%s)\n", nctx.Meal.Name, nctx.Meal.Type)
	fmt.Fprintf(&b, "TARGET: at most %.0f calories for this meal.\n", nctx.TargetCalories)

	b.WriteString("\nHARD LIMITS (do not exceed any of these):\n")
	fmt.Fprintf(&b, "- Total calories: %.0f\n", nctx.TargetCalories)
	fmt.Fprintf(&b, "- Total carbs: %.1f g remaining for the whole day\n", nctx.RemainingCarbs())
	fmt.Fprintf(&b, "- Total fat: %.1f g remaining for the whole day\n", nctx.DailyRemaining.Fat)
	b.WriteString("- Protein and fiber are NOT constrained; more protein is welcome.\n")

	switch opts.Mode {
	case inbound.ModeSingleItem:
		c.writeSingleItemInstructions(&b)
	default:
		c.writeMealInstructions(&b, len(candidates), nctx.Meal.Type.IsSnack(), opts.AllowNewFoods)
	}

	b.WriteString("\nAVAILABLE FOODS (the ONLY valid source of \"food_id\" values):\n")
	b.WriteString(c.serializeCandidates(candidates))

	if len(opts.ExcludeFoodIDs) > 0 {
		ids := make([]string, len(opts.ExcludeFoodIDs))
		for i, id := range opts.ExcludeFoodIDs {
			ids[i] = fmt.Sprintf("%d", id)
		}
		fmt.Fprintf(&b, "\nDo NOT suggest these food ids again: %s\n", strings.Join(ids, ", "))
	}

	if opts.Preferences != "" {
		fmt.Fprintf(&b, "\nUser preferences: %s\n", opts.Preferences)
	}

	b.WriteString("\nRespond with ONLY a valid JSON object. No markdown, no explanations outside the JSON.\n")

	return b.String()
}

func (c *Composer) writeSingleItemInstructions(b *strings.Builder) {
	b.WriteString(`
TASK: Suggest exactly ONE food.
- Pick one food from the available list below, or state its "food_id".
- "quantity" must be a whole number of servings, at least 1.
- The food's total calories (per-serving calories x quantity) must fit the hard limits above.

Response format:
{
  "suggestions": [
    {"food_id": 12, "quantity": 2, "reason": "short justification"}
  ]
}
`)
}

func (c *Composer) writeMealInstructions(b *strings.Builder, poolSize int, snack, allowNew bool) {
	n := 2
	if poolSize >= 8 {
		n = 3
	}
	if poolSize >= 16 && allowNew {
		n = 4
	}
	if snack {
		n = 2
	}

	fmt.Fprintf(b, "\nTASK: Compose a realistic meal of %d foods.\n", n)
	b.WriteString(`- Keep a RUNNING TOTAL of calories, carbs and fat as you pick foods, and verify the cumulative totals stay under every hard limit before finalizing.
- Include at least one protein-rich item (meat, fish, eggs, dairy, legumes) and at least one vegetable or fruit.
- Pick foods that genuinely go together as one meal; avoid nonsensical pairings.
- "quantity" must be a whole number of servings, at least 1, per food.
`)

	if allowNew {
		b.WriteString(`- If nothing in the list fits, you may invent a food: set "is_new": true and provide "name", "serving_size", and per-serving "calories", "protein", "carbs", "fat", "fiber".

Response format:
{
  "suggestions": [
    {"food_id": 12, "quantity": 1, "reason": "short justification"},
    {"is_new": true, "name": "Greek salad", "serving_size": "1 bowl", "quantity": 1,
     "calories": 180, "protein": 5, "carbs": 10, "fat": 13, "fiber": 3, "reason": "short justification"}
  ]
}
`)
		return
	}

	b.WriteString(`- Only use foods from the available list. Do not invent new foods.

Response format:
{
  "suggestions": [
    {"food_id": 12, "quantity": 1, "reason": "short justification"},
    {"food_id": 7, "quantity": 2, "reason": "short justification"}
  ]
}
`)
}

func (c *Composer) serializeCandidates(candidates []nutrition.FoodItem) string {
	lines := make([]candidateLine, len(candidates))
	for i, f := range candidates {
		lines[i] = candidateLine{
			ID:          f.ID,
			Name:        f.Name,
			ServingSize: f.ServingSize,
			Calories:    f.PerServing.Calories,
			Protein:     f.PerServing.Protein,
			Carbs:       f.PerServing.Carbs,
			Fat:         f.PerServing.Fat,
			Fiber:       f.PerServing.Fiber,
		}
	}

	encoded, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(encoded) + "\n"
}
