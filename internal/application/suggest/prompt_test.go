package suggest

import (
	"strings"
	"testing"

	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/macroplan/v1/internal/ports/inbound"
	"github.com/stretchr/testify/assert"
)

func promptContext() *NutritionContext {
	nctx := testContext(600)
	nctx.Meal = nutrition.MealDefinition{Name: "Dinner", Type: nutrition.MealTypeDinner}
	return nctx
}

func TestComposeStatesHardLimits(t *testing.T) {
	nctx := promptContext()
	candidates := []nutrition.FoodItem{food(12, "chicken breast", 165, 31, 0, 3.6, 0)}

	prompt := NewComposer().Compose(nctx, candidates, PromptOptions{Mode: inbound.ModeMeal})

	assert.Contains(t, prompt, "Total calories: 600")
	assert.Contains(t, prompt, "Total carbs: 120.0 g")
	assert.Contains(t, prompt, "Total fat: 40.0 g")
	assert.Contains(t, prompt, "Protein and fiber are NOT constrained")
	assert.Contains(t, prompt, `"id": 12`)
	assert.Contains(t, prompt, "chicken breast")
	assert.Contains(t, prompt, "ONLY a valid JSON object")
}

func TestComposeSingleItemMode(t *testing.T) {
	nctx := promptContext()

	prompt := NewComposer().Compose(nctx, nil, PromptOptions{Mode: inbound.ModeSingleItem})

	assert.Contains(t, prompt, "exactly ONE food")
	assert.NotContains(t, prompt, "RUNNING TOTAL")
}

func TestComposeMealItemCountScalesWithPool(t *testing.T) {
	nctx := promptContext()

	small := NewComposer().Compose(nctx, makeCandidates(3), PromptOptions{Mode: inbound.ModeMeal})
	assert.Contains(t, small, "meal of 2 foods")

	medium := NewComposer().Compose(nctx, makeCandidates(10), PromptOptions{Mode: inbound.ModeMeal})
	assert.Contains(t, medium, "meal of 3 foods")

	large := NewComposer().Compose(nctx, makeCandidates(20), PromptOptions{Mode: inbound.ModeMeal, AllowNewFoods: true})
	assert.Contains(t, large, "meal of 4 foods")
}

func TestComposeSnackCapsAtTwo(t *testing.T) {
	nctx := promptContext()
	nctx.Meal.Type = nutrition.MealTypeSnack

	prompt := NewComposer().Compose(nctx, makeCandidates(20), PromptOptions{Mode: inbound.ModeMeal, AllowNewFoods: true})

	assert.Contains(t, prompt, "meal of 2 foods")
}

func TestComposeNewFoodPolicy(t *testing.T) {
	nctx := promptContext()

	allowed := NewComposer().Compose(nctx, makeCandidates(5), PromptOptions{Mode: inbound.ModeMeal, AllowNewFoods: true})
	assert.Contains(t, allowed, `"is_new": true`)

	denied := NewComposer().Compose(nctx, makeCandidates(5), PromptOptions{Mode: inbound.ModeMeal})
	assert.Contains(t, denied, "Do not invent new foods")
	assert.NotContains(t, denied, "is_new", "the response example must not show an invented food when inventing is forbidden")
}

func TestComposeExclusionsAndPreferences(t *testing.T) {
	nctx := promptContext()

	prompt := NewComposer().Compose(nctx, makeCandidates(5), PromptOptions{
		Mode:           inbound.ModeMeal,
		ExcludeFoodIDs: []int64{7, 11},
		Preferences:    "no shellfish, loves spicy food",
	})

	assert.Contains(t, prompt, "Do NOT suggest these food ids again: 7, 11")
	assert.Contains(t, prompt, "no shellfish, loves spicy food")
}

func TestComposeOmitsEmptySections(t *testing.T) {
	nctx := promptContext()

	prompt := NewComposer().Compose(nctx, makeCandidates(5), PromptOptions{Mode: inbound.ModeMeal})

	assert.False(t, strings.Contains(prompt, "Do NOT suggest these food ids"))
	assert.False(t, strings.Contains(prompt, "User preferences"))
}

func makeCandidates(n int) []nutrition.FoodItem {
	out := make([]nutrition.FoodItem, n)
	for i := range out {
		out[i] = food(int64(i+1), "food", 150, 10, 10, 5, 1)
	}
	return out
}
