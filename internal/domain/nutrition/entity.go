package nutrition

import (
	"time"

	"github.com/google/uuid"
)

// Goal represents a user's active daily macro targets.
type Goal struct {
	ID              int64
	UserID          uuid.UUID
	Targets         Macros
	NetCarbTracking bool
	Active          bool
	CreatedAt       time.Time
}

// MealType classifies a meal slot. Snacks get a smaller share of the daily
// budget than ordinary meals.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// IsSnack reports whether the meal type is a snack slot.
func (t MealType) IsSnack() bool {
	return t == MealTypeSnack
}

// MealDefinition represents one of the user's configured meal slots.
type MealDefinition struct {
	ID          int64
	UserID      uuid.UUID
	Name        string
	Type        MealType
	TimeStart   string
	TimeEnd     string
	Preferences string
}

// FoodOrigin tags where a food item came from.
type FoodOrigin string

const (
	// OriginCatalog is a plain row from the food catalog.
	OriginCatalog FoodOrigin = "catalog"
	// OriginComposite is a linked food whose component servings were summed
	// before entering the pipeline.
	OriginComposite FoodOrigin = "composite"
	// OriginAdHoc is a food invented by the provider, not yet persisted.
	OriginAdHoc FoodOrigin = "ad-hoc"
)

// FoodItem is one eligible food with its per-serving macros.
type FoodItem struct {
	ID          int64
	UserID      *uuid.UUID
	Name        string
	Brand       string
	ServingSize string
	PerServing  Macros
	Origin      FoodOrigin
	Active      bool
}

// Valid reports whether the item is structurally usable by the selector:
// it must have a positive id and a non-zero calorie value.
func (f FoodItem) Valid() bool {
	return f.ID > 0 && f.PerServing.Calories > 0
}

// LedgerEntry is one logged serving entry for a date.
type LedgerEntry struct {
	ID         int64
	UserID     uuid.UUID
	MealID     int64
	FoodID     int64
	Date       string
	Quantity   float64
	PerServing Macros
}

// Total returns the entry's macros scaled by its quantity multiplier.
func (e LedgerEntry) Total() Macros {
	return e.PerServing.Scale(e.Quantity)
}

// ConsumedTotals sums the scaled macros of a set of ledger entries.
func ConsumedTotals(entries []LedgerEntry) Macros {
	var total Macros
	for _, e := range entries {
		total = total.Add(e.Total())
	}
	return total
}
