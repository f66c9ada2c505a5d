// Package gorm provides GORM model definitions and repositories backing the
// nutrition read ports.
package gorm

import (
	"time"

	"github.com/google/uuid"
)

// MacroGoalModel represents the GORM model for macro goals.
type MacroGoalModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	UserID          uuid.UUID `gorm:"type:char(36);not null;index"`
	Calories        float64   `gorm:"not null"`
	Protein         float64   `gorm:"not null"`
	Carbs           float64   `gorm:"not null"`
	Fat             float64   `gorm:"not null"`
	Fiber           float64   `gorm:"default:0"`
	NetCarbTracking bool      `gorm:"default:false"`
	Active          bool      `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (MacroGoalModel) TableName() string { return "macro_goals" }

// MealModel represents the GORM model for user-defined meal slots.
type MealModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserID      uuid.UUID `gorm:"type:char(36);not null;index"`
	Name        string    `gorm:"type:varchar(100);not null"`
	MealType    string    `gorm:"type:varchar(20);not null;default:'snack'"`
	TimeStart   string    `gorm:"type:varchar(5)"`
	TimeEnd     string    `gorm:"type:varchar(5)"`
	Preferences string    `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (MealModel) TableName() string { return "meals" }

// FoodModel represents the GORM model for catalog foods. Common foods have a
// null UserID; custom foods carry their owner.
type FoodModel struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	UserID      *uuid.UUID `gorm:"type:char(36);index"`
	Name        string     `gorm:"type:varchar(255);not null;index"`
	Brand       string     `gorm:"type:varchar(255)"`
	ServingSize string     `gorm:"type:varchar(100)"`
	Calories    float64    `gorm:"not null"`
	Protein     float64    `gorm:"default:0"`
	Carbs       float64    `gorm:"default:0"`
	Fat         float64    `gorm:"default:0"`
	Fiber       float64    `gorm:"default:0"`
	Active      bool       `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (FoodModel) TableName() string { return "foods" }

// LinkedFoodModel represents a composite food assembled from catalog foods.
type LinkedFoodModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserID      uuid.UUID `gorm:"type:char(36);not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	ServingSize string    `gorm:"type:varchar(100)"`
	Active      bool      `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Components []LinkedFoodComponentModel `gorm:"foreignKey:LinkedFoodID"`
}

func (LinkedFoodModel) TableName() string { return "linked_foods" }

// LinkedFoodComponentModel is one catalog food inside a composite, with a
// serving multiplier.
type LinkedFoodComponentModel struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	LinkedFoodID int64   `gorm:"not null;index"`
	FoodID       int64   `gorm:"not null"`
	Quantity     float64 `gorm:"not null;default:1"`

	Food FoodModel `gorm:"foreignKey:FoodID"`
}

func (LinkedFoodComponentModel) TableName() string { return "linked_food_components" }

// MealPlanEntryModel represents one logged serving in the day's ledger.
// Macros are denormalized at log time so later food edits do not rewrite
// history.
type MealPlanEntryModel struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	UserID   uuid.UUID `gorm:"type:char(36);not null;index:idx_ledger_user_date"`
	MealID   int64     `gorm:"not null;index"`
	FoodID   int64     `gorm:"not null"`
	Date     string    `gorm:"type:varchar(10);not null;index:idx_ledger_user_date"`
	Quantity float64   `gorm:"not null;default:1"`
	Calories float64   `gorm:"not null"`
	Protein  float64   `gorm:"default:0"`
	Carbs    float64   `gorm:"default:0"`
	Fat      float64   `gorm:"default:0"`
	Fiber    float64   `gorm:"default:0"`
	CreatedAt time.Time
}

func (MealPlanEntryModel) TableName() string { return "meal_plan_entries" }

// AIConfigModel represents a user's generation-provider settings.
type AIConfigModel struct {
	UserID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	OpenAIEnabled    bool      `gorm:"default:false"`
	OpenAIKey        string    `gorm:"type:text"`
	OpenAIModel      string    `gorm:"type:varchar(100)"`
	OllamaEnabled    bool      `gorm:"default:false"`
	OllamaEndpoint   string    `gorm:"type:varchar(255)"`
	OllamaModel      string    `gorm:"type:varchar(100)"`
	PreferredService string    `gorm:"type:varchar(20)"`
	UpdatedAt        time.Time
}

func (AIConfigModel) TableName() string { return "ai_configs" }

// AllModels lists every model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&MacroGoalModel{},
		&MealModel{},
		&FoodModel{},
		&LinkedFoodModel{},
		&LinkedFoodComponentModel{},
		&MealPlanEntryModel{},
		&AIConfigModel{},
	}
}
