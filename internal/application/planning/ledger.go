package planning

import (
	"context"
	"time"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/ports/outbound"
	"github.com/planifia/planner/pkg/errors"
)

// SuppressionLedger records, per user and week, what the user removed from
// the auto list so the next pass does not add it straight back.
type SuppressionLedger struct {
	states outbound.SyncStateRepository
}

// NewSuppressionLedger creates a ledger over a sync state store.
func NewSuppressionLedger(states outbound.SyncStateRepository) *SuppressionLedger {
	return &SuppressionLedger{states: states}
}

// Register adds qty to the entry of ingredientName for the week containing
// referenceDate. A non-positive qty is a no-op and returns (nil, nil). A
// ledger from another week is discarded first.
func (l *SuppressionLedger) Register(ctx context.Context, userID, ingredientName string, qty shared.Quantity, referenceDate time.Time) (*shopping.SuppressionRegisteredEvent, error) {
	if !qty.IsPositive() {
		return nil, nil
	}

	key := ingredient.Key(ingredientName)
	weekKey := meal.WeekKey(referenceDate)

	state, err := l.states.Get(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("load sync state", err)
	}

	next := shopping.NewSyncState(weekKey)
	next.Consumed = state.ConsumedFor(weekKey)
	next.Consumed[key] = next.Consumed[key].Add(qty)

	if _, err := l.states.Update(ctx, userID, next); err != nil {
		return nil, errors.NewDatabaseError("save sync state", err)
	}

	return &shopping.SuppressionRegisteredEvent{
		UserID:       userID,
		WeekKey:      weekKey,
		Key:          key,
		Quantity:     qty,
		RegisteredAt: time.Now().UTC(),
	}, nil
}

// Load returns the consumed map for weekKey, empty when the stored ledger
// belongs to another week or does not exist.
func (l *SuppressionLedger) Load(ctx context.Context, userID, weekKey string) (map[string]shared.Quantity, error) {
	state, err := l.states.Get(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("load sync state", err)
	}
	return state.ConsumedFor(weekKey), nil
}

// Reset starts an empty ledger for weekKey.
func (l *SuppressionLedger) Reset(ctx context.Context, userID, weekKey string) error {
	if _, err := l.states.Update(ctx, userID, shopping.NewSyncState(weekKey)); err != nil {
		return errors.NewDatabaseError("reset sync state", err)
	}
	return nil
}
