// Package shopping provides the application layer for the shopping list
// screen: grouping, manual entries, purchase toggles and notes.
package shopping

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/ports/inbound"
	"github.com/planifia/planner/internal/ports/outbound"
	"github.com/planifia/planner/pkg/errors"
)

// maxNotesLength bounds the free-text notes attached to a list
const maxNotesLength = 4000

// ShoppingService implements the shopping list use cases
type ShoppingService struct {
	items  outbound.ShoppingItemRepository
	notes  outbound.ShoppingNotesRepository
	sync   inbound.ReconciliationService
	clock  shared.Clock
	logger *zap.Logger
}

// NewShoppingService creates a new shopping service
func NewShoppingService(
	items outbound.ShoppingItemRepository,
	notes outbound.ShoppingNotesRepository,
	sync inbound.ReconciliationService,
	clock shared.Clock,
	logger *zap.Logger,
) inbound.ShoppingService {
	if clock == nil {
		clock = shared.SystemClock(nil)
	}
	return &ShoppingService{
		items:  items,
		notes:  notes,
		sync:   sync,
		clock:  clock,
		logger: logger.Named("shopping-service"),
	}
}

// List checks the tracked week, then returns the grouped list with notes
func (s *ShoppingService) List(ctx context.Context, userID string) (*inbound.ShoppingListDTO, error) {
	if _, err := s.sync.EnsureWeek(ctx, userID, s.clock()); err != nil {
		return nil, errors.Wrap(err, "failed to check shopping week")
	}

	items, err := s.items.List(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list shopping items", err)
	}
	notes, err := s.notes.Get(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("load shopping notes", err)
	}

	groups := shopping.GroupItems(items)
	purchased := 0
	for _, g := range groups {
		if g.Purchased {
			purchased++
		}
	}

	return &inbound.ShoppingListDTO{
		Groups:         groups,
		PurchasedCount: purchased,
		TotalCount:     len(groups),
		Notes:          notes,
	}, nil
}

// AddManual adds a user-authored entry. Reconciliation never touches it.
func (s *ShoppingService) AddManual(ctx context.Context, userID, name string) (*inbound.ShoppingItemDTO, error) {
	item, err := shopping.NewManualItem(userID, name)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, errors.NewDatabaseError("create shopping item", err)
	}

	s.logger.Info("Manual shopping item added",
		zap.String("user_id", userID),
		zap.String("item_id", item.ID),
	)
	return toDTO(item), nil
}

// TogglePurchased flips a group: all members become purchased unless they
// already all are. It returns the new state.
func (s *ShoppingService) TogglePurchased(ctx context.Context, userID string, itemIDs []string) (bool, error) {
	items, err := s.owned(ctx, userID, itemIDs)
	if err != nil {
		return false, err
	}

	target := false
	for _, item := range items {
		if !item.Purchased {
			target = true
			break
		}
	}

	for _, item := range items {
		if item.Purchased == target {
			continue
		}
		item.Purchased = target
		if err := s.items.Update(ctx, item); err != nil {
			return false, errors.NewDatabaseError("update shopping item", err)
		}
	}

	s.logger.Debug("Shopping group toggled",
		zap.String("user_id", userID),
		zap.Int("items", len(items)),
		zap.Bool("purchased", target),
	)
	return target, nil
}

// DeleteGroup removes every member of a group. Manual members are deleted
// directly; auto members are suppressed for the week and removed through
// the reconciliation engine.
func (s *ShoppingService) DeleteGroup(ctx context.Context, userID string, itemIDs []string) (*inbound.SyncReport, error) {
	items, err := s.owned(ctx, userID, itemIDs)
	if err != nil {
		return nil, err
	}

	var autoIDs []string
	for _, item := range items {
		if !item.Manual {
			autoIDs = append(autoIDs, item.ID)
			continue
		}
		if err := s.items.Delete(ctx, item.ID); err != nil {
			return nil, errors.NewDatabaseError("delete shopping item", err)
		}
	}

	now := s.clock()
	if len(autoIDs) == 0 {
		return &inbound.SyncReport{UserID: userID, WeekKey: meal.WeekKey(now), Mode: inbound.SyncModeNone}, nil
	}

	// A stale week would discard the suppression at the next rollover.
	if _, err := s.sync.EnsureWeek(ctx, userID, now); err != nil {
		return nil, errors.Wrap(err, "failed to check shopping week")
	}

	report, err := s.sync.RemoveAutoItems(ctx, userID, autoIDs, now)
	if err != nil {
		// The rollover may already have replaced these items.
		if errors.Is(err, errors.CodeShoppingItemNotFound) {
			return s.sync.Refresh(ctx, userID, now)
		}
		return nil, errors.Wrap(err, "failed to remove auto items")
	}
	return report, nil
}

// GetNotes returns the free-text notes of userID
func (s *ShoppingService) GetNotes(ctx context.Context, userID string) (string, error) {
	notes, err := s.notes.Get(ctx, userID)
	if err != nil {
		return "", errors.NewDatabaseError("load shopping notes", err)
	}
	return notes, nil
}

// UpdateNotes replaces the notes of userID
func (s *ShoppingService) UpdateNotes(ctx context.Context, userID, notes string) (string, error) {
	if len([]rune(notes)) > maxNotesLength {
		return "", errors.NewValidationError("notes are too long").WithMetadata("max_length", maxNotesLength)
	}
	saved, err := s.notes.Update(ctx, userID, notes)
	if err != nil {
		return "", errors.NewDatabaseError("save shopping notes", err)
	}
	return saved, nil
}

// Sync rolls the week over when needed and otherwise runs an incremental pass
func (s *ShoppingService) Sync(ctx context.Context, userID string) (*inbound.SyncReport, error) {
	now := s.clock()
	report, err := s.sync.EnsureWeek(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if report.Mode != inbound.SyncModeNone {
		return report, nil
	}
	return s.sync.IncrementalResync(ctx, userID, now)
}

// owned loads itemIDs and fails when any is missing or belongs to someone else
func (s *ShoppingService) owned(ctx context.Context, userID string, itemIDs []string) ([]*shopping.Item, error) {
	if len(itemIDs) == 0 {
		return nil, errors.NewValidationError("at least one item id is required")
	}

	seen := make(map[string]bool, len(itemIDs))
	items := make([]*shopping.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		item, err := s.items.FindByID(ctx, id)
		if err != nil {
			if stderrors.Is(err, shopping.ErrItemNotFound) {
				return nil, errors.NewShoppingItemNotFoundError(id)
			}
			return nil, errors.NewDatabaseError("find shopping item", err)
		}
		if item.UserID != userID {
			return nil, errors.NewShoppingItemNotFoundError(id)
		}
		items = append(items, item)
	}
	return items, nil
}

func toDTO(item *shopping.Item) *inbound.ShoppingItemDTO {
	return &inbound.ShoppingItemDTO{
		ID:               item.ID,
		IngredientName:   item.IngredientName,
		Category:         item.Category,
		Purchased:        item.Purchased,
		Manual:           item.Manual,
		RequiredQuantity: item.RequiredQuantity,
		CreatedAt:        item.CreatedAt,
	}
}
