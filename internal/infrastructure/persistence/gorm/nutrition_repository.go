package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/nutrition"
	"gorm.io/gorm"
)

// GoalRepository implements outbound.GoalRepository using GORM.
type GoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new GORM goal repository.
func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// ActiveGoal returns the user's active macro goal, newest first when several
// are flagged active.
func (r *GoalRepository) ActiveGoal(ctx context.Context, userID uuid.UUID) (*nutrition.Goal, error) {
	var model MacroGoalModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nutrition.ErrMissingGoal
		}
		return nil, fmt.Errorf("failed to load active goal: %w", err)
	}

	return &nutrition.Goal{
		ID:     model.ID,
		UserID: model.UserID,
		Targets: nutrition.Macros{
			Calories: model.Calories,
			Protein:  model.Protein,
			Carbs:    model.Carbs,
			Fat:      model.Fat,
			Fiber:    model.Fiber,
		},
		NetCarbTracking: model.NetCarbTracking,
		Active:          model.Active,
		CreatedAt:       model.CreatedAt,
	}, nil
}

// MealRepository implements outbound.MealRepository using GORM.
type MealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates a new GORM meal repository.
func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

// FindByID returns the meal slot. Ownership is enforced in the query, so a
// meal belonging to another user is indistinguishable from a missing one.
func (r *MealRepository) FindByID(ctx context.Context, userID uuid.UUID, mealID int64) (*nutrition.MealDefinition, error) {
	var model MealModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nutrition.ErrMealNotFound
		}
		return nil, fmt.Errorf("failed to load meal: %w", err)
	}

	return &nutrition.MealDefinition{
		ID:          model.ID,
		UserID:      model.UserID,
		Name:        model.Name,
		Type:        nutrition.MealType(model.MealType),
		TimeStart:   model.TimeStart,
		TimeEnd:     model.TimeEnd,
		Preferences: model.Preferences,
	}, nil
}

// FoodRepository implements outbound.FoodRepository using GORM.
type FoodRepository struct {
	db *gorm.DB
}

// NewFoodRepository creates a new GORM food repository.
func NewFoodRepository(db *gorm.DB) *FoodRepository {
	return &FoodRepository{db: db}
}

// ActiveCatalog returns common foods, the user's custom foods, and the user's
// composite foods with component macros summed into a single per-serving row.
func (r *FoodRepository) ActiveCatalog(ctx context.Context, userID uuid.UUID) ([]nutrition.FoodItem, error) {
	var foodModels []FoodModel
	err := r.db.WithContext(ctx).
		Where("active = ? AND (user_id IS NULL OR user_id = ?)", true, userID).
		Find(&foodModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load food catalog: %w", err)
	}

	catalog := make([]nutrition.FoodItem, 0, len(foodModels))
	for _, m := range foodModels {
		catalog = append(catalog, nutrition.FoodItem{
			ID:          m.ID,
			UserID:      m.UserID,
			Name:        m.Name,
			Brand:       m.Brand,
			ServingSize: m.ServingSize,
			PerServing: nutrition.Macros{
				Calories: m.Calories,
				Protein:  m.Protein,
				Carbs:    m.Carbs,
				Fat:      m.Fat,
				Fiber:    m.Fiber,
			},
			Origin: nutrition.OriginCatalog,
			Active: m.Active,
		})
	}

	var linked []LinkedFoodModel
	err = r.db.WithContext(ctx).
		Preload("Components.Food").
		Where("user_id = ? AND active = ?", userID, true).
		Find(&linked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load composite foods: %w", err)
	}

	for _, lf := range linked {
		uid := lf.UserID
		var total nutrition.Macros
		for _, comp := range lf.Components {
			per := nutrition.Macros{
				Calories: comp.Food.Calories,
				Protein:  comp.Food.Protein,
				Carbs:    comp.Food.Carbs,
				Fat:      comp.Food.Fat,
				Fiber:    comp.Food.Fiber,
			}
			total = total.Add(per.Scale(comp.Quantity))
		}
		catalog = append(catalog, nutrition.FoodItem{
			ID:          lf.ID,
			UserID:      &uid,
			Name:        lf.Name,
			ServingSize: lf.ServingSize,
			PerServing:  total,
			Origin:      nutrition.OriginComposite,
			Active:      lf.Active,
		})
	}

	return catalog, nil
}

// LedgerRepository implements outbound.LedgerRepository using GORM.
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new GORM ledger repository.
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// EntriesForDate returns the user's logged servings for one calendar day.
func (r *LedgerRepository) EntriesForDate(ctx context.Context, userID uuid.UUID, date string) ([]nutrition.LedgerEntry, error) {
	var models []MealPlanEntryModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}

	entries := make([]nutrition.LedgerEntry, len(models))
	for i, m := range models {
		entries[i] = nutrition.LedgerEntry{
			ID:       m.ID,
			UserID:   m.UserID,
			MealID:   m.MealID,
			FoodID:   m.FoodID,
			Date:     m.Date,
			Quantity: m.Quantity,
			PerServing: nutrition.Macros{
				Calories: m.Calories,
				Protein:  m.Protein,
				Carbs:    m.Carbs,
				Fat:      m.Fat,
				Fiber:    m.Fiber,
			},
		}
	}
	return entries, nil
}
