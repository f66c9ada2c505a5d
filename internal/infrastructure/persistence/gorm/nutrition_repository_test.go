package gorm

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// One named in-memory database per test; shared cache keeps the pool's
	// connections on the same database without leaking rows across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(AllModels()...))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestActiveGoalPicksNewestActive(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()

	require.NoError(t, db.Create(&MacroGoalModel{
		UserID: userID, Calories: 1800, Protein: 120, Carbs: 180, Fat: 60,
		Active: true, CreatedAt: time.Now().Add(-48 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&MacroGoalModel{
		UserID: userID, Calories: 2000, Protein: 150, Carbs: 200, Fat: 70, Fiber: 30,
		NetCarbTracking: true, Active: true, CreatedAt: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&MacroGoalModel{
		UserID: userID, Calories: 2500, Active: false, CreatedAt: time.Now().Add(time.Hour),
	}).Error)

	goal, err := NewGoalRepository(db).ActiveGoal(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 2000.0, goal.Targets.Calories)
	assert.True(t, goal.NetCarbTracking)
}

func TestActiveGoalMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := NewGoalRepository(db).ActiveGoal(context.Background(), uuid.New())

	assert.ErrorIs(t, err, nutrition.ErrMissingGoal)
}

func TestMealFindByIDEnforcesOwnership(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()

	meal := MealModel{UserID: owner, Name: "Dinner", MealType: "dinner", TimeStart: "18:00", TimeEnd: "20:00"}
	require.NoError(t, db.Create(&meal).Error)

	got, err := NewMealRepository(db).FindByID(context.Background(), owner, meal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", got.Name)
	assert.Equal(t, nutrition.MealTypeDinner, got.Type)

	_, err = NewMealRepository(db).FindByID(context.Background(), uuid.New(), meal.ID)
	assert.ErrorIs(t, err, nutrition.ErrMealNotFound, "someone else's meal looks missing")

	_, err = NewMealRepository(db).FindByID(context.Background(), owner, 9999)
	assert.ErrorIs(t, err, nutrition.ErrMealNotFound)
}

func TestInactiveRowsRoundTrip(t *testing.T) {
	db := newTestDB(t)

	food := FoodModel{Name: "retired bar", Calories: 300, Active: false}
	require.NoError(t, db.Create(&food).Error)

	var got FoodModel
	require.NoError(t, db.First(&got, food.ID).Error)
	assert.False(t, got.Active, "creating an inactive row must not resurrect it")
}

func TestActiveCatalogScope(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	otherID := uuid.New()

	require.NoError(t, db.Create(&FoodModel{Name: "oats", Calories: 150, Protein: 5, Carbs: 27, Fat: 3, Fiber: 4, Active: true}).Error)
	require.NoError(t, db.Create(&FoodModel{UserID: &userID, Name: "my shake", Calories: 220, Protein: 30, Active: true}).Error)
	require.NoError(t, db.Create(&FoodModel{UserID: &otherID, Name: "their shake", Calories: 220, Active: true}).Error)
	require.NoError(t, db.Create(&FoodModel{Name: "retired bar", Calories: 300, Active: false}).Error)

	catalog, err := NewFoodRepository(db).ActiveCatalog(context.Background(), userID)

	require.NoError(t, err)
	names := make([]string, len(catalog))
	for i, f := range catalog {
		names[i] = f.Name
		assert.Equal(t, nutrition.OriginCatalog, f.Origin)
	}
	assert.ElementsMatch(t, []string{"oats", "my shake"}, names)
}

func TestActiveCatalogSumsCompositeComponents(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()

	bread := FoodModel{Name: "bread", Calories: 80, Protein: 3, Carbs: 15, Fat: 1, Fiber: 2, Active: true}
	peanutButter := FoodModel{Name: "peanut butter", Calories: 190, Protein: 8, Carbs: 7, Fat: 16, Fiber: 2, Active: true}
	require.NoError(t, db.Create(&bread).Error)
	require.NoError(t, db.Create(&peanutButter).Error)

	sandwich := LinkedFoodModel{
		UserID: userID, Name: "PB sandwich", ServingSize: "1 sandwich", Active: true,
		Components: []LinkedFoodComponentModel{
			{FoodID: bread.ID, Quantity: 2},
			{FoodID: peanutButter.ID, Quantity: 1},
		},
	}
	require.NoError(t, db.Create(&sandwich).Error)

	catalog, err := NewFoodRepository(db).ActiveCatalog(context.Background(), userID)

	require.NoError(t, err)
	var composite *nutrition.FoodItem
	for i := range catalog {
		if catalog[i].Origin == nutrition.OriginComposite {
			composite = &catalog[i]
		}
	}
	require.NotNil(t, composite)
	assert.Equal(t, "PB sandwich", composite.Name)
	// 2x bread + 1x peanut butter.
	assert.InDelta(t, 350.0, composite.PerServing.Calories, 0.001)
	assert.InDelta(t, 14.0, composite.PerServing.Protein, 0.001)
	assert.InDelta(t, 37.0, composite.PerServing.Carbs, 0.001)
	assert.InDelta(t, 18.0, composite.PerServing.Fat, 0.001)
	assert.InDelta(t, 6.0, composite.PerServing.Fiber, 0.001)
}

func TestLedgerEntriesForDate(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()

	require.NoError(t, db.Create(&MealPlanEntryModel{
		UserID: userID, MealID: 1, FoodID: 10, Date: "2026-08-20", Quantity: 2,
		Calories: 150, Protein: 5, Carbs: 27, Fat: 3, Fiber: 4,
	}).Error)
	require.NoError(t, db.Create(&MealPlanEntryModel{
		UserID: userID, MealID: 2, FoodID: 11, Date: "2026-08-21", Quantity: 1,
		Calories: 200,
	}).Error)
	require.NoError(t, db.Create(&MealPlanEntryModel{
		UserID: uuid.New(), MealID: 1, FoodID: 10, Date: "2026-08-20", Quantity: 1,
		Calories: 150,
	}).Error)

	entries, err := NewLedgerRepository(db).EntriesForDate(context.Background(), userID, "2026-08-20")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(10), entries[0].FoodID)
	assert.Equal(t, 2.0, entries[0].Quantity)
	assert.Equal(t, 150.0, entries[0].PerServing.Calories)
}
