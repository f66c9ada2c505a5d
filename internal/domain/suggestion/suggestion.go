// Package suggestion defines the meal-suggestion job record, its status
// machine and the canonical suggestion variants produced by the pipeline.
package suggestion

import "github.com/macroplan/v1/internal/domain/nutrition"

// Kind discriminates the three canonical suggestion variants.
type Kind string

const (
	// KindExisting references a food from the user's catalog.
	KindExisting Kind = "existing"
	// KindComposite references a linked (pre-aggregated) food.
	KindComposite Kind = "composite"
	// KindNew is a food the provider invented; it carries its own macros.
	KindNew Kind = "new"
)

// Suggestion is one accepted item. Exactly one variant applies, selected by
// Kind: existing and composite suggestions carry a FoodID, new suggestions
// carry Name, ServingSize and PerServing instead. Quantity is always a whole
// number of servings, at least 1.
type Suggestion struct {
	Kind        Kind             `json:"kind"`
	FoodID      int64            `json:"food_id,omitempty"`
	Name        string           `json:"name"`
	ServingSize string           `json:"serving_size,omitempty"`
	PerServing  nutrition.Macros `json:"per_serving"`
	Quantity    int              `json:"quantity"`
	Reason      string           `json:"reason,omitempty"`
	// Nutrition is PerServing scaled by Quantity and rounded for display,
	// filled in by the budget enforcer.
	Nutrition nutrition.Macros `json:"nutrition"`
}

// IsNew reports whether the suggestion invents a food.
func (s Suggestion) IsNew() bool {
	return s.Kind == KindNew
}

// Total returns the suggestion's unrounded macros scaled by quantity.
func (s Suggestion) Total() nutrition.Macros {
	return s.PerServing.Scale(float64(s.Quantity))
}

// Totals aggregates the accepted suggestion set.
type Totals struct {
	nutrition.Macros
	Items int `json:"items"`
}

// SumTotals computes the aggregate for a set of enforced suggestions.
func SumTotals(suggestions []Suggestion) Totals {
	var sum nutrition.Macros
	for _, s := range suggestions {
		sum = sum.Add(s.Total())
	}
	return Totals{Macros: sum.RoundForDisplay(), Items: len(suggestions)}
}
