// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/inventory"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
)

// MealToModel converts a domain meal to a GORM model
func MealToModel(m *meal.Meal) *MealModel {
	return &MealModel{
		ID:       m.ID,
		UserID:   m.UserID,
		Date:     m.Date.Format(meal.DateLayout),
		MealType: string(m.Type),
		DishName: m.DishName,
	}
}

// ModelToMeal converts a GORM model to a domain meal
func ModelToMeal(model *MealModel) (*meal.Meal, error) {
	date, err := meal.ParseDate(model.Date)
	if err != nil {
		return nil, fmt.Errorf("meal %s: %w", model.ID, err)
	}
	mealType, err := meal.ParseType(model.MealType)
	if err != nil {
		return nil, fmt.Errorf("meal %s: %w", model.ID, err)
	}
	return &meal.Meal{
		ID:       model.ID,
		UserID:   model.UserID,
		Date:     date,
		Type:     mealType,
		DishName: model.DishName,
	}, nil
}

// nameKey is the uniqueness key of inventory rows: the canonical ingredient
// key, so "Huevo" and "Huevos" share one row.
func nameKey(name string) string {
	return ingredient.Key(name)
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// InventoryToModel converts a domain inventory item to a GORM model
func InventoryToModel(item *inventory.Item) *InventoryItemModel {
	return &InventoryItemModel{
		ID:             item.ID,
		UserID:         item.UserID,
		IngredientName: item.IngredientName,
		NameKey:        nameKey(item.IngredientName),
		Quantity:       item.Quantity,
		CreatedAt:      item.CreatedAt,
	}
}

// ModelToInventory converts a GORM model to a domain inventory item
func ModelToInventory(model *InventoryItemModel) *inventory.Item {
	return &inventory.Item{
		ID:             model.ID,
		UserID:         model.UserID,
		IngredientName: model.IngredientName,
		Quantity:       model.Quantity,
		CreatedAt:      model.CreatedAt,
	}
}

// ShoppingItemToModel converts a domain shopping item to a GORM model
func ShoppingItemToModel(item *shopping.Item) *ShoppingItemModel {
	model := &ShoppingItemModel{
		ID:             item.ID,
		UserID:         item.UserID,
		IngredientName: item.IngredientName,
		Category:       item.Category,
		Purchased:      item.Purchased,
		Manual:         item.Manual,
		MealID:         item.MealID,
		CreatedAt:      item.CreatedAt,
	}
	if item.RequiredQuantity != nil {
		text := item.RequiredQuantity.String()
		model.RequiredQuantity = &text
	}
	return model
}

// ModelToShoppingItem converts a GORM model to a domain shopping item
func ModelToShoppingItem(model *ShoppingItemModel) (*shopping.Item, error) {
	item := &shopping.Item{
		ID:             model.ID,
		UserID:         model.UserID,
		IngredientName: model.IngredientName,
		Category:       model.Category,
		Purchased:      model.Purchased,
		Manual:         model.Manual,
		MealID:         model.MealID,
		CreatedAt:      model.CreatedAt,
	}
	if model.RequiredQuantity != nil {
		qty, err := shared.QuantityFromAny(*model.RequiredQuantity)
		if err != nil {
			return nil, fmt.Errorf("shopping item %s: %w", model.ID, err)
		}
		item.RequiredQuantity = &qty
	}
	return item, nil
}

// SyncStateToModel converts a domain sync state to a GORM model
func SyncStateToModel(userID string, state *shopping.SyncState) *SyncStateModel {
	consumed := datatypes.JSONMap{}
	for key, qty := range state.Consumed {
		consumed[key] = qty.String()
	}
	return &SyncStateModel{
		UserID:   userID,
		WeekKey:  state.WeekKey,
		Consumed: consumed,
	}
}

// ModelToSyncState converts a GORM model to a domain sync state. Ledger
// entries written as JSON numbers are accepted too.
func ModelToSyncState(model *SyncStateModel) (*shopping.SyncState, error) {
	state := shopping.NewSyncState(model.WeekKey)
	for key, raw := range model.Consumed {
		qty, err := shared.QuantityFromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("sync state %s, key %q: %w", model.UserID, key, err)
		}
		state.Consumed[key] = qty
	}
	return state, nil
}
