// Package suggest implements the AI-assisted meal-suggestion pipeline:
// nutrition context building, candidate selection, prompt composition,
// response interpretation, budget enforcement and the job orchestrator.
package suggest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/macroplan/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// NutritionContext is the snapshot of goal, meal and consumption state every
// later stage works from. It is computed once at job start; the pipeline
// never re-reads collaborator data.
type NutritionContext struct {
	Goal nutrition.Goal
	Meal nutrition.MealDefinition
	Date string

	// TargetCalories is the calorie budget for this suggestion run.
	TargetCalories float64

	DayConsumed  nutrition.Macros
	MealConsumed nutrition.Macros

	// DailyRemaining is goal minus day-wide consumption, floored at zero.
	DailyRemaining nutrition.Macros
	// MealRemaining is the daily goal scaled to this meal's share, minus what
	// the meal already holds.
	MealRemaining nutrition.Macros

	// MealFoodIDs are foods already present in the target meal.
	MealFoodIDs map[int64]bool
	// DayFoodIDs are foods logged anywhere else that day (variety rule).
	DayFoodIDs map[int64]bool
}

// RemainingCarbs returns the carb budget for the day, net of fiber when the
// goal tracks net carbs.
func (c *NutritionContext) RemainingCarbs() float64 {
	return c.DailyRemaining.EffectiveCarbs(c.Goal.NetCarbTracking)
}

// ContextBuilder derives the nutrition context from collaborator reads.
type ContextBuilder struct {
	goals  outbound.GoalRepository
	meals  outbound.MealRepository
	ledger outbound.LedgerRepository
	logger *zap.Logger
}

// NewContextBuilder creates a context builder.
func NewContextBuilder(
	goals outbound.GoalRepository,
	meals outbound.MealRepository,
	ledger outbound.LedgerRepository,
	logger *zap.Logger,
) *ContextBuilder {
	return &ContextBuilder{
		goals:  goals,
		meals:  meals,
		ledger: ledger,
		logger: logger.Named("context-builder"),
	}
}

// Build computes consumed totals and remaining budgets for one suggestion
// run. It fails before any provider is contacted when the user has no active
// goal or the meal does not belong to them.
func (b *ContextBuilder) Build(ctx context.Context, userID uuid.UUID, mealID int64, date string, targetCalories float64) (*NutritionContext, error) {
	goal, err := b.goals.ActiveGoal(ctx, userID)
	if err != nil {
		return nil, err
	}

	meal, err := b.meals.FindByID(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	entries, err := b.ledger.EntriesForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	nctx := &NutritionContext{
		Goal:           *goal,
		Meal:           *meal,
		Date:           date,
		TargetCalories: targetCalories,
		MealFoodIDs:    make(map[int64]bool),
		DayFoodIDs:     make(map[int64]bool),
	}

	for _, entry := range entries {
		nctx.DayConsumed = nctx.DayConsumed.Add(entry.Total())
		if entry.MealID == mealID {
			nctx.MealConsumed = nctx.MealConsumed.Add(entry.Total())
			nctx.MealFoodIDs[entry.FoodID] = true
		} else {
			nctx.DayFoodIDs[entry.FoodID] = true
		}
	}

	nctx.DailyRemaining = nutrition.Remaining(goal.Targets, nctx.DayConsumed)

	// The meal's budget is the daily goal scaled to the share this meal's
	// calorie target represents, with what the meal already holds removed.
	ratio := 0.0
	if goal.Targets.Calories > 0 {
		ratio = targetCalories / goal.Targets.Calories
	}
	mealBudget := goal.Targets.Scale(ratio)
	nctx.MealRemaining = nutrition.Remaining(mealBudget, nctx.MealConsumed)

	b.logger.Debug("nutrition context built",
		zap.String("user_id", userID.String()),
		zap.Int64("meal_id", mealID),
		zap.String("date", date),
		zap.Float64("target_calories", targetCalories),
		zap.Float64("daily_remaining_calories", nctx.DailyRemaining.Calories),
		zap.Float64("meal_remaining_calories", nctx.MealRemaining.Calories),
	)

	return nctx, nil
}
