// Package gorm provides GORM model definitions for the application
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/planifia/planner/internal/domain/shared"
)

// MealModel represents the GORM model for planned meals
type MealModel struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	UserID    string `gorm:"type:varchar(64);not null;index:idx_meals_slot,priority:1"`
	Date      string `gorm:"type:char(10);not null;index:idx_meals_slot,priority:2"`
	MealType  string `gorm:"column:meal_type;type:varchar(10);not null;index:idx_meals_slot,priority:3"`
	DishName  string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InventoryItemModel represents the GORM model for on-hand stock. NameKey is
// the lowercase trimmed name and is unique per user.
type InventoryItemModel struct {
	ID             string          `gorm:"type:char(36);primaryKey"`
	UserID         string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_inventory_user_name,priority:1"`
	IngredientName string          `gorm:"type:varchar(255);not null"`
	NameKey        string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_inventory_user_name,priority:2"`
	Quantity       shared.Quantity `gorm:"type:varchar(32);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ShoppingItemModel represents the GORM model for shopping list entries
type ShoppingItemModel struct {
	ID               string    `gorm:"type:char(36);primaryKey"`
	UserID           string    `gorm:"type:varchar(64);not null;index"`
	IngredientName   string    `gorm:"type:varchar(255);not null"`
	Category         string    `gorm:"type:varchar(50);not null"`
	Purchased        bool      `gorm:"not null;default:false"`
	Manual           bool      `gorm:"not null;default:false;index"`
	RequiredQuantity *string   `gorm:"type:varchar(32)"`
	MealID           *string   `gorm:"type:char(36)"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
}

// SyncStateModel holds the tracked week and suppression ledger of one user.
// Consumed maps canonical keys to quantities in their text form.
type SyncStateModel struct {
	UserID    string            `gorm:"type:varchar(64);primaryKey"`
	WeekKey   string            `gorm:"type:char(10);not null"`
	Consumed  datatypes.JSONMap `gorm:"not null"`
	UpdatedAt time.Time
}

// ShoppingNotesModel holds the free-text notes of one user
type ShoppingNotesModel struct {
	UserID    string `gorm:"type:varchar(64);primaryKey"`
	Notes     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// BeforeCreate hooks
func (m *MealModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *InventoryItemModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *ShoppingItemModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Table names
func (MealModel) TableName() string {
	return "meals"
}

func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

func (ShoppingItemModel) TableName() string {
	return "shopping_items"
}

func (SyncStateModel) TableName() string {
	return "shopping_sync_states"
}

func (ShoppingNotesModel) TableName() string {
	return "shopping_notes"
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&MealModel{},
		&InventoryItemModel{},
		&ShoppingItemModel{},
		&SyncStateModel{},
		&ShoppingNotesModel{},
	}
}
