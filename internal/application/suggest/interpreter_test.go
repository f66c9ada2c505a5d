package suggest

import (
	"testing"

	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/macroplan/v1/internal/domain/suggestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() map[int64]nutrition.FoodItem {
	return map[int64]nutrition.FoodItem{
		12: food(12, "chicken breast", 165, 31, 0, 3.6, 0),
		15: {
			ID: 15, Name: "protein bowl", ServingSize: "1 bowl",
			PerServing: nutrition.Macros{Calories: 420, Protein: 35, Carbs: 30, Fat: 16, Fiber: 5},
			Origin:     nutrition.OriginComposite, Active: true,
		},
	}
}

func TestInterpretPlainEnvelope(t *testing.T) {
	raw := `{"suggestions":[{"food_id":12,"quantity":2,"reason":"lean protein"}]}`

	entries, err := NewInterpreter().Interpret(raw)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(12), entries[0].foodID())
	assert.Equal(t, 2.0, entries[0].Quantity)
}

func TestInterpretStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"suggestions\":[{\"food_id\":12,\"quantity\":1}]}\n```"

	entries, err := NewInterpreter().Interpret(raw)

	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInterpretSkipsLeadingProse(t *testing.T) {
	raw := `Sure! Here is a meal that fits your macros:
{"suggestions":[{"food_id":12,"quantity":1,"reason":"fits {your} budget"}]}
Hope that helps!`

	entries, err := NewInterpreter().Interpret(raw)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fits {your} budget", entries[0].Reason, "braces inside strings do not break the scan")
}

func TestInterpretBareSuggestionObject(t *testing.T) {
	raw := `{"food_id":12,"quantity":1,"reason":"single item"}`

	entries, err := NewInterpreter().Interpret(raw)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(12), entries[0].foodID())
}

func TestInterpretSalvagesMalformedJSON(t *testing.T) {
	// Truncated response: the envelope never closes.
	raw := `{"suggestions":[{"food_id":12,"quantity":2},{"food_id":15,"quantity":1},{"food_id"`

	entries, err := NewInterpreter().Interpret(raw)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(12), entries[0].foodID())
	assert.Equal(t, int64(15), entries[1].foodID())
}

func TestInterpretSalvageCapped(t *testing.T) {
	raw := `"food_id": 1, "quantity": 1 "food_id": 2, "quantity": 1 "food_id": 3, "quantity": 1 ` +
		`"food_id": 4, "quantity": 1 "food_id": 5, "quantity": 1`

	entries, err := NewInterpreter().Interpret(raw)

	require.NoError(t, err)
	assert.Len(t, entries, salvageCap)
}

func TestInterpretNothingUsable(t *testing.T) {
	_, err := NewInterpreter().Interpret("I cannot help with that request.")
	assert.ErrorIs(t, err, suggestion.ErrParse)
}

func TestNormalizeFloorsQuantities(t *testing.T) {
	entries := []rawSuggestion{
		{FoodID: ptr(int64(12)), Quantity: 2.7},
		{FoodID: ptr(int64(15)), Quantity: 0.5},
	}

	out := NewInterpreter().Normalize(entries, testCatalog(), false)

	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].Quantity, "fractional servings floor")
	assert.Equal(t, 1, out[1].Quantity, "positive fractions below one round up to a single serving")
}

func TestNormalizeDropsUnusableEntries(t *testing.T) {
	entries := []rawSuggestion{
		{FoodID: ptr(int64(12)), Quantity: -1},            // negative quantity
		{FoodID: ptr(int64(999)), Quantity: 1},            // unknown id
		{IsNew: true, Name: "invented", Calories: 200, Quantity: 1}, // new while disallowed
		{FoodID: ptr(int64(12)), Quantity: 1},
	}

	out := NewInterpreter().Normalize(entries, testCatalog(), false)

	require.Len(t, out, 1)
	assert.Equal(t, int64(12), out[0].FoodID)
	assert.Equal(t, suggestion.KindExisting, out[0].Kind)
}

func TestNormalizeAcceptsNewWhenAllowed(t *testing.T) {
	entries := []rawSuggestion{
		{IsNew: true, Name: "greek salad", ServingSize: "1 bowl", Quantity: 1,
			Calories: 180, Protein: 5, Carbs: 10, Fat: 13, Fiber: 3, Reason: "fresh"},
		{IsNew: true, Quantity: 1}, // missing name and calories
	}

	out := NewInterpreter().Normalize(entries, testCatalog(), true)

	require.Len(t, out, 1)
	assert.Equal(t, suggestion.KindNew, out[0].Kind)
	assert.Equal(t, "greek salad", out[0].Name)
	assert.Equal(t, 180.0, out[0].PerServing.Calories)
}

func TestNormalizeMarksComposites(t *testing.T) {
	entries := []rawSuggestion{{CompositeID: ptr(int64(15)), Quantity: 1}}

	out := NewInterpreter().Normalize(entries, testCatalog(), false)

	require.Len(t, out, 1)
	assert.Equal(t, suggestion.KindComposite, out[0].Kind)
	assert.Equal(t, "protein bowl", out[0].Name)
}

func TestNormalizeEmptyAfterFilteringIsNotAnError(t *testing.T) {
	entries := []rawSuggestion{{FoodID: ptr(int64(999)), Quantity: 1}}

	out := NewInterpreter().Normalize(entries, testCatalog(), false)

	assert.Empty(t, out, "filtering everything out defers to the budget enforcer's fallback")
}

func ptr[T any](v T) *T { return &v }
