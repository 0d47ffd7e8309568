// Package shopping models the shopping list, the per-user sync state and
// the events raised when the engine changes auto-generated entries.
package shopping

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/shared"
)

const (
	// CategoryIngredients labels auto items derived from planned meals.
	CategoryIngredients = "Ingredients"
	// CategoryManual labels items typed in by the user.
	CategoryManual = "Manual"
)

var (
	ErrIngredientNameRequired = errors.New("ingredient name is required")
	ErrItemNotFound           = errors.New("shopping item not found")
	ErrManualItemImmutable    = errors.New("manual items are not managed by reconciliation")
	ErrRequiredQuantity       = errors.New("auto items need a strictly positive required quantity")
)

// Item is one shopping-list entry. Manual items belong to the user; auto
// items belong to the reconciliation engine.
type Item struct {
	ID               string
	UserID           string
	IngredientName   string
	Category         string
	Purchased        bool
	Manual           bool
	RequiredQuantity *shared.Quantity
	MealID           *string
	CreatedAt        time.Time
}

// NewManualItem creates a user-authored item.
func NewManualItem(userID, name string) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrIngredientNameRequired
	}
	return &Item{
		ID:             uuid.NewString(),
		UserID:         userID,
		IngredientName: name,
		Category:       CategoryManual,
		Manual:         true,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// NewAutoItem creates an engine-owned item for a deficit.
func NewAutoItem(userID, displayName string, required shared.Quantity) (*Item, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, ErrIngredientNameRequired
	}
	if !required.IsPositive() || required.IsUnlimited() {
		return nil, ErrRequiredQuantity
	}
	qty := required
	return &Item{
		ID:               uuid.NewString(),
		UserID:           userID,
		IngredientName:   displayName,
		Category:         CategoryIngredients,
		RequiredQuantity: &qty,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// Key returns the canonical ingredient key of the item.
func (i *Item) Key() string {
	return ingredient.Key(i.IngredientName)
}

// Required returns the required quantity, or zero when unset.
func (i *Item) Required() shared.Quantity {
	if i.RequiredQuantity == nil {
		return shared.Quantity{}
	}
	return *i.RequiredQuantity
}

// Matches reports whether the auto item already shows displayName and qty.
func (i *Item) Matches(displayName string, qty shared.Quantity) bool {
	return i.IngredientName == displayName && i.Required().Equal(qty)
}

// Retarget points an auto item at a new display name and quantity.
func (i *Item) Retarget(displayName string, qty shared.Quantity) error {
	if i.Manual {
		return ErrManualItemImmutable
	}
	if !qty.IsPositive() || qty.IsUnlimited() {
		return ErrRequiredQuantity
	}
	i.IngredientName = displayName
	i.RequiredQuantity = &qty
	return nil
}

// AutoItems returns the engine-owned items of list.
func AutoItems(list []*Item) []*Item {
	out := make([]*Item, 0, len(list))
	for _, item := range list {
		if !item.Manual {
			out = append(out, item)
		}
	}
	return out
}
