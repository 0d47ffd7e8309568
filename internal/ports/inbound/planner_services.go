// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the use cases the planner exposes to HTTP handlers and jobs
package inbound

import (
	"context"
	"time"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
)

// ReconciliationService keeps the auto-generated shopping list in step with
// planned meals, inventory and the suppression ledger
type ReconciliationService interface {
	IncrementalResync(ctx context.Context, userID string, referenceDate time.Time) (*SyncReport, error)
	FullResync(ctx context.Context, userID string, referenceDate time.Time) (*SyncReport, error)

	// EnsureWeek runs a full resync when the stored week differs from now's.
	EnsureWeek(ctx context.Context, userID string, now time.Time) (*SyncReport, error)

	// Refresh is what mutations call: a full resync on rollover, otherwise
	// an incremental one.
	Refresh(ctx context.Context, userID string, now time.Time) (*SyncReport, error)

	RegisterSuppression(ctx context.Context, userID, ingredientName string, qty shared.Quantity, referenceDate time.Time) error
	LoadSuppressed(ctx context.Context, userID, weekKey string) (map[string]shared.Quantity, error)

	// RemoveAutoItems suppresses the quantity of each auto item, deletes
	// them and resyncs.
	RemoveAutoItems(ctx context.Context, userID string, itemIDs []string, now time.Time) (*SyncReport, error)
	RemoveAutoItem(ctx context.Context, userID, itemID string, now time.Time) (*SyncReport, error)
	Status(ctx context.Context, userID string, now time.Time) (*SyncStatusDTO, error)
}

// MealService defines the use cases for meal planning
type MealService interface {
	ScheduleMeal(ctx context.Context, cmd ScheduleMealCommand) (*MealDTO, error)
	DeleteMeal(ctx context.Context, userID, mealID string) error
	ListMeals(ctx context.Context, userID string) ([]MealDTO, error)
	ListWeek(ctx context.Context, userID, weekKey string) ([]MealDTO, error)
	ResolveDish(ctx context.Context, dishName string) (*ResolutionDTO, error)
}

// InventoryService defines the use cases for on-hand stock
type InventoryService interface {
	Upsert(ctx context.Context, cmd UpsertInventoryCommand) (*InventoryItemDTO, error)
	Adjust(ctx context.Context, cmd AdjustInventoryCommand) (*InventoryItemDTO, error)
	Delete(ctx context.Context, userID, itemID string) error
	List(ctx context.Context, userID string) ([]InventoryItemDTO, error)
}

// ShoppingService defines the use cases for the shopping list screen
type ShoppingService interface {
	List(ctx context.Context, userID string) (*ShoppingListDTO, error)
	AddManual(ctx context.Context, userID, name string) (*ShoppingItemDTO, error)
	TogglePurchased(ctx context.Context, userID string, itemIDs []string) (bool, error)
	DeleteGroup(ctx context.Context, userID string, itemIDs []string) (*SyncReport, error)
	GetNotes(ctx context.Context, userID string) (string, error)
	UpdateNotes(ctx context.Context, userID, notes string) (string, error)
	Sync(ctx context.Context, userID string) (*SyncReport, error)
}

// SyncMode says which kind of pass produced a report
type SyncMode string

const (
	SyncModeNone        SyncMode = "none"
	SyncModeIncremental SyncMode = "incremental"
	SyncModeFull        SyncMode = "full"
)

// SyncReport summarizes one reconciliation pass
type SyncReport struct {
	UserID   string        `json:"user_id"`
	WeekKey  string        `json:"week_key"`
	Mode     SyncMode      `json:"mode"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Deleted  int           `json:"deleted"`
	Duration time.Duration `json:"duration_ns"`
}

// Changed reports whether the pass wrote anything to the shopping list
func (r *SyncReport) Changed() bool {
	return r != nil && r.Created+r.Updated+r.Deleted > 0
}

// SyncStatusDTO is the week tracker state of a user
type SyncStatusDTO struct {
	Status         shopping.SyncStatus        `json:"status"`
	WeekKey        string                     `json:"week_key,omitempty"`
	CurrentWeekKey string                     `json:"current_week_key"`
	Consumed       map[string]shared.Quantity `json:"consumed"`
}

// ScheduleMealCommand puts a dish into a (user, date, type) slot
type ScheduleMealCommand struct {
	UserID   string
	Date     time.Time
	MealType string
	DishName string
}

// UpsertInventoryCommand sets the on-hand quantity of an ingredient
type UpsertInventoryCommand struct {
	UserID         string
	IngredientName string
	Quantity       shared.Quantity
}

// AdjustInventoryCommand moves an item's quantity by a number of quarters
type AdjustInventoryCommand struct {
	UserID        string
	ItemID        string
	DeltaQuarters int64
}

// MealDTO for meal responses
type MealDTO struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
	DishName string `json:"dish_name"`
}

// ResolutionDTO for dish resolution responses
type ResolutionDTO struct {
	DishName    string              `json:"dish_name"`
	Ingredients []string            `json:"ingredients"`
	Category    ingredient.Category `json:"category"`
	Keys        []string            `json:"keys"`
}

// InventoryItemDTO for inventory responses
type InventoryItemDTO struct {
	ID             string          `json:"id"`
	IngredientName string          `json:"ingredient_name"`
	Key            string          `json:"key"`
	Quantity       shared.Quantity `json:"quantity"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ShoppingItemDTO for single shopping item responses
type ShoppingItemDTO struct {
	ID               string           `json:"id"`
	IngredientName   string           `json:"ingredient_name"`
	Category         string           `json:"category"`
	Purchased        bool             `json:"purchased"`
	Manual           bool             `json:"manual"`
	RequiredQuantity *shared.Quantity `json:"required_quantity,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ShoppingListDTO is the grouped list shown to the user
type ShoppingListDTO struct {
	Groups         []shopping.Group `json:"groups"`
	PurchasedCount int              `json:"purchased_count"`
	TotalCount     int              `json:"total_count"`
	Notes          string           `json:"notes"`
}
