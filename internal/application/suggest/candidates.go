package suggest

import (
	"math"
	"sort"

	"github.com/macroplan/v1/internal/domain/nutrition"
)

const (
	// defaultCandidateLimit bounds the list handed to the prompt composer.
	defaultCandidateLimit = 25

	// fiberLeniency is how many grams of fiber a single serving may carry
	// once the day's fiber budget is exhausted.
	fiberLeniency = 0.5

	// assumedMealItems is the item count used to compute the per-item calorie
	// share the closeness score targets.
	assumedMealItems = 3

	calorieFitWeight     = 0.6
	proteinDensityWeight = 0.4
)

// Selector filters and scores the food catalog against remaining budgets.
type Selector struct {
	Limit int
}

// NewSelector creates a selector with the default candidate bound.
func NewSelector() *Selector {
	return &Selector{Limit: defaultCandidateLimit}
}

type scoredFood struct {
	food  nutrition.FoodItem
	score float64
}

// Select returns the bounded, scored candidate list for one suggestion run.
// Scoring metadata is stripped before handoff; the caller only sees foods in
// descending preference order.
func (s *Selector) Select(catalog []nutrition.FoodItem, nctx *NutritionContext, exclude map[int64]bool) []nutrition.FoodItem {
	remainingCarbs := nctx.RemainingCarbs()
	remainingFat := nctx.DailyRemaining.Fat
	fiberExhausted := nctx.DailyRemaining.Fiber <= 0

	perItemShare := nctx.TargetCalories / assumedMealItems

	scored := make([]scoredFood, 0, len(catalog))
	for _, food := range catalog {
		if !food.Valid() {
			continue
		}
		if nctx.MealFoodIDs[food.ID] {
			continue
		}
		if nctx.DayFoodIDs[food.ID] {
			// Soft variety rule: skip foods already eaten elsewhere today.
			continue
		}
		if exclude[food.ID] {
			continue
		}
		serving := food.PerServing
		if serving.EffectiveCarbs(nctx.Goal.NetCarbTracking) > remainingCarbs {
			continue
		}
		if serving.Fat > remainingFat {
			continue
		}
		if fiberExhausted && serving.Fiber > fiberLeniency {
			continue
		}

		scored = append(scored, scoredFood{food: food, score: scoreFood(serving, perItemShare)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	limit := s.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	foods := make([]nutrition.FoodItem, len(scored))
	for i, sf := range scored {
		foods[i] = sf.food
	}
	return foods
}

// scoreFood weighs how close a serving's calories sit to an even per-item
// share of the target against its protein density.
func scoreFood(serving nutrition.Macros, perItemShare float64) float64 {
	fit := 0.0
	if perItemShare > 0 {
		fit = 1 - math.Abs(serving.Calories-perItemShare)/perItemShare
		if fit < 0 {
			fit = 0
		}
	}

	// Protein density tops out around 0.1 g/kcal for lean protein; scale it
	// into the same 0..1 band as the calorie fit.
	density := serving.Protein / serving.Calories * 10
	if density > 1 {
		density = 1
	}

	return calorieFitWeight*fit + proteinDensityWeight*density
}
