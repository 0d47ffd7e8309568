package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/planifia/planner/internal/domain/inventory"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/ports/outbound"
)

// InventoryRepository implements the inventory repository interface using GORM
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) outbound.InventoryRepository {
	return &InventoryRepository{db: db}
}

// List returns the stock of a user in creation order
func (r *InventoryRepository) List(ctx context.Context, userID string) ([]*inventory.Item, error) {
	var models []InventoryItemModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	items := make([]*inventory.Item, len(models))
	for i := range models {
		items[i] = ModelToInventory(&models[i])
	}
	return items, nil
}

// FindByID finds an inventory item by ID
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*inventory.Item, error) {
	var model InventoryItemModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, result.Error
	}
	return ModelToInventory(&model), nil
}

// UpsertByName sets the quantity of the row with the same canonical key as name.
// A non-positive quantity deletes the row and returns nil.
func (r *InventoryRepository) UpsertByName(ctx context.Context, userID, name string, qty shared.Quantity) (*inventory.Item, error) {
	var out *inventory.Item

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing InventoryItemModel
		result := tx.Where("user_id = ? AND name_key = ?", userID, nameKey(name)).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}
		found := result.RowsAffected > 0

		if !qty.IsPositive() {
			if found {
				return tx.Delete(&InventoryItemModel{}, "id = ?", existing.ID).Error
			}
			return nil
		}

		if found {
			existing.IngredientName = trimmed(name)
			existing.Quantity = qty
			if err := tx.Model(&existing).Select("ingredient_name", "quantity", "updated_at").Updates(&existing).Error; err != nil {
				return err
			}
			out = ModelToInventory(&existing)
			return nil
		}

		item, err := inventory.NewItem(userID, name, qty)
		if err != nil {
			return err
		}
		model := InventoryToModel(item)
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		out = ModelToInventory(model)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete deletes an inventory item by ID
func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&InventoryItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventory.ErrItemNotFound
	}
	return nil
}
