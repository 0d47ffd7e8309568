// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the planner uses to reach its stores
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/inventory"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent keys
var ErrCacheMiss = errors.New("cache miss")

// MealRepository defines the interface for meal persistence
type MealRepository interface {
	List(ctx context.Context, userID string) ([]*meal.Meal, error)
	FindByID(ctx context.Context, id string) (*meal.Meal, error)
	Create(ctx context.Context, m *meal.Meal) error
	Delete(ctx context.Context, id string) error

	// DeleteSlot removes whatever occupies (userID, date, type) and reports
	// how many rows went away.
	DeleteSlot(ctx context.Context, userID string, date time.Time, mealType meal.Type) (int64, error)
}

// InventoryRepository defines the interface for inventory persistence
type InventoryRepository interface {
	List(ctx context.Context, userID string) ([]*inventory.Item, error)
	FindByID(ctx context.Context, id string) (*inventory.Item, error)

	// UpsertByName matches on the trimmed, case-insensitive name. A finite
	// quantity of zero or less removes the entry and returns nil.
	UpsertByName(ctx context.Context, userID, name string, qty shared.Quantity) (*inventory.Item, error)
	Delete(ctx context.Context, id string) error
}

// ShoppingItemRepository defines the interface for shopping list persistence
type ShoppingItemRepository interface {
	List(ctx context.Context, userID string) ([]*shopping.Item, error)
	FindByID(ctx context.Context, id string) (*shopping.Item, error)
	Create(ctx context.Context, item *shopping.Item) error
	Update(ctx context.Context, item *shopping.Item) error
	Delete(ctx context.Context, id string) error
}

// SyncStateRepository persists one SyncState per user
type SyncStateRepository interface {
	// Get returns nil without error when the user has never synced.
	Get(ctx context.Context, userID string) (*shopping.SyncState, error)
	Update(ctx context.Context, userID string, state *shopping.SyncState) (*shopping.SyncState, error)
}

// ShoppingNotesRepository stores the free-text note attached to a user's list
type ShoppingNotesRepository interface {
	Get(ctx context.Context, userID string) (string, error)
	Update(ctx context.Context, userID, notes string) (string, error)
}

// DishIngredientLookup breaks a dish name into ingredients.
// ingredient.Resolver is the default implementation.
type DishIngredientLookup interface {
	Resolve(ctx context.Context, dishName string) (ingredient.Resolution, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// EventPublisher delivers domain events after an operation completes
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent) error
}
