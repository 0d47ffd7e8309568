// Package inventory provides the application layer for on-hand stock.
package inventory

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/planifia/planner/internal/domain/inventory"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/ports/inbound"
	"github.com/planifia/planner/internal/ports/outbound"
	"github.com/planifia/planner/pkg/errors"
)

// InventoryService implements the inventory use cases. Every mutation
// refreshes the shopping list because deficits depend on stock.
type InventoryService struct {
	items  outbound.InventoryRepository
	sync   inbound.ReconciliationService
	clock  shared.Clock
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	items outbound.InventoryRepository,
	sync inbound.ReconciliationService,
	clock shared.Clock,
	logger *zap.Logger,
) inbound.InventoryService {
	if clock == nil {
		clock = shared.SystemClock(nil)
	}
	return &InventoryService{
		items:  items,
		sync:   sync,
		clock:  clock,
		logger: logger.Named("inventory-service"),
	}
}

// Upsert sets the quantity of an ingredient. A zero quantity removes the
// entry and returns a nil DTO.
func (s *InventoryService) Upsert(ctx context.Context, cmd inbound.UpsertInventoryCommand) (*inbound.InventoryItemDTO, error) {
	name := strings.TrimSpace(cmd.IngredientName)
	if name == "" {
		return nil, errors.NewValidationError(inventory.ErrIngredientNameRequired.Error())
	}

	item, err := s.items.UpsertByName(ctx, cmd.UserID, name, cmd.Quantity)
	if err != nil {
		return nil, errors.NewDatabaseError("upsert inventory item", err)
	}

	s.logger.Info("Inventory updated",
		zap.String("user_id", cmd.UserID),
		zap.String("ingredient", name),
		zap.Stringer("quantity", cmd.Quantity),
	)

	if err := s.refresh(ctx, cmd.UserID); err != nil {
		return nil, err
	}
	return toDTO(item), nil
}

// Adjust moves the quantity of an item by a signed number of quarters and
// removes it when the result is not positive
func (s *InventoryService) Adjust(ctx context.Context, cmd inbound.AdjustInventoryCommand) (*inbound.InventoryItemDTO, error) {
	item, err := s.owned(ctx, cmd.UserID, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	qty, keep := item.Adjust(cmd.DeltaQuarters)
	var result *inventory.Item
	if keep {
		result, err = s.items.UpsertByName(ctx, cmd.UserID, item.IngredientName, qty)
		if err != nil {
			return nil, errors.NewDatabaseError("adjust inventory item", err)
		}
	} else if err := s.items.Delete(ctx, item.ID); err != nil {
		return nil, errors.NewDatabaseError("delete inventory item", err)
	}

	s.logger.Debug("Inventory adjusted",
		zap.String("user_id", cmd.UserID),
		zap.String("item_id", cmd.ItemID),
		zap.Int64("delta_quarters", cmd.DeltaQuarters),
		zap.Bool("removed", !keep),
	)

	if err := s.refresh(ctx, cmd.UserID); err != nil {
		return nil, err
	}
	return toDTO(result), nil
}

// Delete removes an inventory item owned by userID
func (s *InventoryService) Delete(ctx context.Context, userID, itemID string) error {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, item.ID); err != nil {
		return errors.NewDatabaseError("delete inventory item", err)
	}

	s.logger.Info("Inventory item deleted", zap.String("user_id", userID), zap.String("item_id", itemID))
	return s.refresh(ctx, userID)
}

// List returns the stock of userID sorted by name
func (s *InventoryService) List(ctx context.Context, userID string) ([]inbound.InventoryItemDTO, error) {
	items, err := s.items.List(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list inventory", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].IngredientName) < strings.ToLower(items[j].IngredientName)
	})

	out := make([]inbound.InventoryItemDTO, len(items))
	for i, item := range items {
		out[i] = *toDTO(item)
	}
	return out, nil
}

func (s *InventoryService) owned(ctx context.Context, userID, itemID string) (*inventory.Item, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if stderrors.Is(err, inventory.ErrItemNotFound) {
			return nil, errors.NewInventoryItemNotFoundError(itemID)
		}
		return nil, errors.NewDatabaseError("find inventory item", err)
	}
	if item.UserID != userID {
		return nil, errors.NewInventoryItemNotFoundError(itemID)
	}
	return item, nil
}

func (s *InventoryService) refresh(ctx context.Context, userID string) error {
	if _, err := s.sync.Refresh(ctx, userID, s.clock()); err != nil {
		return errors.Wrap(err, "failed to refresh shopping list")
	}
	return nil
}

func toDTO(item *inventory.Item) *inbound.InventoryItemDTO {
	if item == nil {
		return nil
	}
	return &inbound.InventoryItemDTO{
		ID:             item.ID,
		IngredientName: item.IngredientName,
		Key:            item.Key(),
		Quantity:       item.Quantity,
		CreatedAt:      item.CreatedAt,
	}
}
