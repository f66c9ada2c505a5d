package suggest

import (
	"sort"

	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/macroplan/v1/internal/domain/suggestion"
)

const (
	// skipThreshold stops admitting further items once the running calorie
	// total reaches this share of the limit.
	skipThreshold = 0.95

	// fallbackMaxItems bounds the deterministic fallback meal.
	fallbackMaxItems = 4
)

// Enforcer caps model output against the actual remaining budgets. The model
// is advisory; this stage is the authority on what fits.
type Enforcer struct{}

// NewEnforcer creates a budget enforcer.
func NewEnforcer() *Enforcer {
	return &Enforcer{}
}

// Enforce walks the suggestions in provider order, capping quantities
// downward so the running totals fit the calorie limit and the day's carb and
// fat room. When nothing survives it builds a deterministic fallback from the
// candidate pool; if that is empty too, ErrEmptyResult.
func (e *Enforcer) Enforce(
	suggested []suggestion.Suggestion,
	candidates []nutrition.FoodItem,
	nctx *NutritionContext,
	exclude map[int64]bool,
) ([]suggestion.Suggestion, *suggestion.Totals, error) {
	limit := nctx.TargetCalories
	if nctx.DailyRemaining.Calories < limit {
		limit = nctx.DailyRemaining.Calories
	}

	kept := e.cap(suggested, limit, nctx)

	if len(kept) == 0 {
		kept = e.fallback(suggested, candidates, limit, nctx, exclude)
	}
	if len(kept) == 0 {
		return nil, nil, suggestion.ErrEmptyResult
	}

	for i := range kept {
		kept[i].Nutrition = kept[i].Total().RoundForDisplay()
	}
	totals := suggestion.SumTotals(kept)
	return kept, &totals, nil
}

// cap reduces quantities, never raises them. An item whose single serving
// does not fit the remaining room is dropped entirely.
func (e *Enforcer) cap(suggested []suggestion.Suggestion, limit float64, nctx *NutritionContext) []suggestion.Suggestion {
	calorieRoom := limit
	carbRoom := nctx.RemainingCarbs()
	fatRoom := nctx.DailyRemaining.Fat
	netCarbs := nctx.Goal.NetCarbTracking

	kept := make([]suggestion.Suggestion, 0, len(suggested))
	for _, s := range suggested {
		if calorieRoom <= limit*(1-skipThreshold) {
			break
		}

		qty := maxFit(s.PerServing, s.Quantity, calorieRoom, carbRoom, fatRoom, netCarbs)
		if qty < 1 {
			continue
		}

		s.Quantity = qty
		total := s.Total()
		calorieRoom -= total.Calories
		carbRoom -= total.EffectiveCarbs(netCarbs)
		fatRoom -= total.Fat
		kept = append(kept, s)
	}
	return kept
}

// fallback composes a small meal straight from the candidate pool: highest
// protein first, calories breaking ties, greedily packed within the budgets.
func (e *Enforcer) fallback(
	suggested []suggestion.Suggestion,
	candidates []nutrition.FoodItem,
	limit float64,
	nctx *NutritionContext,
	exclude map[int64]bool,
) []suggestion.Suggestion {
	alreadySuggested := make(map[int64]bool, len(suggested))
	for _, s := range suggested {
		if s.FoodID > 0 {
			alreadySuggested[s.FoodID] = true
		}
	}

	pool := make([]nutrition.FoodItem, 0, len(candidates))
	for _, f := range candidates {
		if exclude[f.ID] || alreadySuggested[f.ID] {
			continue
		}
		pool = append(pool, f)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].PerServing.Protein != pool[j].PerServing.Protein {
			return pool[i].PerServing.Protein > pool[j].PerServing.Protein
		}
		return pool[i].PerServing.Calories > pool[j].PerServing.Calories
	})

	calorieRoom := limit
	carbRoom := nctx.RemainingCarbs()
	fatRoom := nctx.DailyRemaining.Fat
	netCarbs := nctx.Goal.NetCarbTracking

	kept := make([]suggestion.Suggestion, 0, fallbackMaxItems)
	for _, f := range pool {
		if len(kept) == fallbackMaxItems {
			break
		}
		serving := f.PerServing
		if serving.Calories > calorieRoom ||
			serving.EffectiveCarbs(netCarbs) > carbRoom ||
			serving.Fat > fatRoom {
			continue
		}

		kind := suggestion.KindExisting
		if f.Origin == nutrition.OriginComposite {
			kind = suggestion.KindComposite
		}
		kept = append(kept, suggestion.Suggestion{
			Kind:        kind,
			FoodID:      f.ID,
			Name:        f.Name,
			ServingSize: f.ServingSize,
			PerServing:  serving,
			Quantity:    1,
			Reason:      "fits your remaining macros",
		})

		calorieRoom -= serving.Calories
		carbRoom -= serving.EffectiveCarbs(netCarbs)
		fatRoom -= serving.Fat
	}
	return kept
}

// maxFit returns the largest quantity not above want whose total fits every
// remaining budget.
func maxFit(serving nutrition.Macros, want int, calorieRoom, carbRoom, fatRoom float64, netCarbs bool) int {
	for qty := want; qty >= 1; qty-- {
		f := float64(qty)
		if serving.Calories*f <= calorieRoom &&
			serving.EffectiveCarbs(netCarbs)*f <= carbRoom &&
			serving.Fat*f <= fatRoom {
			return qty
		}
	}
	return 0
}
