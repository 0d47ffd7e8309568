// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/ports/outbound"
)

// MealRepository implements the meal repository interface using GORM
type MealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates a new meal repository
func NewMealRepository(db *gorm.DB) outbound.MealRepository {
	return &MealRepository{db: db}
}

// List returns every meal of a user ordered by date
func (r *MealRepository) List(ctx context.Context, userID string) ([]*meal.Meal, error) {
	var models []MealModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	meals := make([]*meal.Meal, 0, len(models))
	for i := range models {
		m, err := ModelToMeal(&models[i])
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, nil
}

// FindByID finds a meal by ID
func (r *MealRepository) FindByID(ctx context.Context, id string) (*meal.Meal, error) {
	var model MealModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, meal.ErrMealNotFound
		}
		return nil, result.Error
	}

	return ModelToMeal(&model)
}

// Create stores a new meal
func (r *MealRepository) Create(ctx context.Context, m *meal.Meal) error {
	model := MealToModel(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	m.ID = model.ID
	return nil
}

// Delete deletes a meal by ID
func (r *MealRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&MealModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return meal.ErrMealNotFound
	}
	return nil
}

// DeleteSlot clears a (user, date, type) slot and reports how many rows went
func (r *MealRepository) DeleteSlot(ctx context.Context, userID string, date time.Time, mealType meal.Type) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND meal_type = ?", userID, meal.CalendarDay(date).Format(meal.DateLayout), string(mealType)).
		Delete(&MealModel{})
	return result.RowsAffected, result.Error
}
