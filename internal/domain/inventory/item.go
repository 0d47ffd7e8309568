// Package inventory models what a user already has at home.
package inventory

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/shared"
)

var (
	ErrIngredientNameRequired = errors.New("ingredient name is required")
	ErrItemNotFound           = errors.New("inventory item not found")
)

// Item is an on-hand quantity of one ingredient. Unique per user and
// canonical key.
type Item struct {
	ID             string
	UserID         string
	IngredientName string
	Quantity       shared.Quantity
	CreatedAt      time.Time
}

// NewItem creates an inventory entry with a trimmed name.
func NewItem(userID, name string, qty shared.Quantity) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrIngredientNameRequired
	}
	return &Item{
		ID:             uuid.NewString(),
		UserID:         userID,
		IngredientName: name,
		Quantity:       qty,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Key returns the canonical ingredient key of the item.
func (i *Item) Key() string {
	return ingredient.Key(i.IngredientName)
}

// Adjust applies a signed quarter delta. Unlimited stock ignores deltas.
// The second result is false when the item should be removed.
func (i *Item) Adjust(deltaQuarters int64) (shared.Quantity, bool) {
	if i.Quantity.IsUnlimited() {
		return i.Quantity, true
	}
	next := i.Quantity.QuarterUnits() + deltaQuarters
	if next <= 0 {
		return shared.Quantity{}, false
	}
	i.Quantity = shared.Quarters(next)
	return i.Quantity, true
}

// ByKey indexes items by canonical key. A later entry for the same key
// replaces an earlier one.
func ByKey(items []*Item) map[string]shared.Quantity {
	out := make(map[string]shared.Quantity, len(items))
	for _, item := range items {
		out[item.Key()] = item.Quantity
	}
	return out
}
