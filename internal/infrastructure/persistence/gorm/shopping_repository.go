package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/ports/outbound"
)

// ShoppingItemRepository implements the shopping item repository interface using GORM
type ShoppingItemRepository struct {
	db *gorm.DB
}

// NewShoppingItemRepository creates a new shopping item repository
func NewShoppingItemRepository(db *gorm.DB) outbound.ShoppingItemRepository {
	return &ShoppingItemRepository{db: db}
}

// List returns the items of a user in creation order
func (r *ShoppingItemRepository) List(ctx context.Context, userID string) ([]*shopping.Item, error) {
	var models []ShoppingItemModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	items := make([]*shopping.Item, 0, len(models))
	for i := range models {
		item, err := ModelToShoppingItem(&models[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// FindByID finds a shopping item by ID
func (r *ShoppingItemRepository) FindByID(ctx context.Context, id string) (*shopping.Item, error) {
	var model ShoppingItemModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shopping.ErrItemNotFound
		}
		return nil, result.Error
	}
	return ModelToShoppingItem(&model)
}

// Create stores a new shopping item
func (r *ShoppingItemRepository) Create(ctx context.Context, item *shopping.Item) error {
	model := ShoppingItemToModel(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	return nil
}

// Update rewrites every mutable column of an existing item
func (r *ShoppingItemRepository) Update(ctx context.Context, item *shopping.Item) error {
	model := ShoppingItemToModel(item)

	result := r.db.WithContext(ctx).
		Model(&ShoppingItemModel{}).
		Where("id = ?", item.ID).
		Select("ingredient_name", "category", "purchased", "manual", "required_quantity", "meal_id", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shopping.ErrItemNotFound
	}
	return nil
}

// Delete deletes a shopping item by ID
func (r *ShoppingItemRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&ShoppingItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shopping.ErrItemNotFound
	}
	return nil
}
