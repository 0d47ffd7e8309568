// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/inventory"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
)

// Monday of the week most fixtures live in.
var ReferenceMonday = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

// PlannerFactory builds planner entities from a seeded faker so runs are
// reproducible.
type PlannerFactory struct {
	faker *gofakeit.Faker
}

// NewPlannerFactory creates a new factory with seeded faker
func NewPlannerFactory(seed int64) *PlannerFactory {
	return &PlannerFactory{faker: gofakeit.New(seed)}
}

// UserID returns a random user id
func (f *PlannerFactory) UserID() string {
	return f.faker.UUID()
}

// DishName picks a curated dish
func (f *PlannerFactory) DishName() string {
	entry := ingredient.DefaultDictionary[f.faker.Number(0, len(ingredient.DefaultDictionary)-1)]
	return entry.Dish
}

// IngredientName returns a random ingredient-like word
func (f *PlannerFactory) IngredientName() string {
	return f.faker.Vegetable()
}

// DayInWeek returns a random day of the week starting at monday
func (f *PlannerFactory) DayInWeek(monday time.Time) time.Time {
	return monday.AddDate(0, 0, f.faker.Number(0, 6))
}

// Meal creates a meal on a random day of the week starting at monday
func (f *PlannerFactory) Meal(userID string, monday time.Time) *meal.Meal {
	mealType := meal.Lunch
	if f.faker.Bool() {
		mealType = meal.Dinner
	}
	m, err := meal.New(userID, f.DayInWeek(monday), mealType, f.DishName())
	if err != nil {
		panic(err)
	}
	return m
}

// Week fills every slot of the week starting at monday
func (f *PlannerFactory) Week(userID string, monday time.Time) []*meal.Meal {
	out := make([]*meal.Meal, 0, 14)
	for day := 0; day < 7; day++ {
		for _, mealType := range []meal.Type{meal.Lunch, meal.Dinner} {
			m, err := meal.New(userID, monday.AddDate(0, 0, day), mealType, f.DishName())
			if err != nil {
				panic(err)
			}
			out = append(out, m)
		}
	}
	return out
}

// Quantity returns a positive finite quantity up to max whole units
func (f *PlannerFactory) Quantity(max int) shared.Quantity {
	return shared.Quarters(int64(f.faker.Number(1, max*4)))
}

// InventoryItem creates an on-hand entry
func (f *PlannerFactory) InventoryItem(userID string) *inventory.Item {
	item, err := inventory.NewItem(userID, f.IngredientName(), f.Quantity(5))
	if err != nil {
		panic(err)
	}
	return item
}

// ManualItem creates a user-authored shopping entry
func (f *PlannerFactory) ManualItem(userID string) *shopping.Item {
	item, err := shopping.NewManualItem(userID, f.faker.Noun())
	if err != nil {
		panic(err)
	}
	return item
}

// AutoItem creates an engine-owned shopping entry
func (f *PlannerFactory) AutoItem(userID, name string) *shopping.Item {
	item, err := shopping.NewAutoItem(userID, name, f.Quantity(3))
	if err != nil {
		panic(err)
	}
	return item
}
