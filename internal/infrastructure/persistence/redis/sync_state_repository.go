package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/ports/outbound"
)

// weekField holds the week key inside the state hash; every other field is
// a ledger entry keyed by canonical ingredient key.
const weekField = "__week"

// SyncStateRepository keeps one hash per user: the tracked week plus the
// consumed quantities in their text form.
type SyncStateRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewSyncStateRepository creates a Redis-backed sync state store
func NewSyncStateRepository(client redis.UniversalClient, prefix string) outbound.SyncStateRepository {
	return &SyncStateRepository{client: client, prefix: prefix}
}

func (r *SyncStateRepository) key(userID string) string {
	return r.prefix + "sync_state:" + userID
}

// Get returns nil without error when the user has never synced
func (r *SyncStateRepository) Get(ctx context.Context, userID string) (*shopping.SyncState, error) {
	fields, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	week, ok := fields[weekField]
	if !ok {
		return nil, nil
	}

	state := shopping.NewSyncState(week)
	for field, raw := range fields {
		if field == weekField {
			continue
		}
		qty, err := shared.QuantityFromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("sync state %s, key %q: %w", userID, field, err)
		}
		state.Consumed[field] = qty
	}
	return state, nil
}

// Update replaces the whole hash in one transaction
func (r *SyncStateRepository) Update(ctx context.Context, userID string, state *shopping.SyncState) (*shopping.SyncState, error) {
	values := make([]interface{}, 0, 2+2*len(state.Consumed))
	values = append(values, weekField, state.WeekKey)
	for key, qty := range state.Consumed {
		values = append(values, key, qty.String())
	}

	key := r.key(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := shopping.NewSyncState(state.WeekKey)
	for k, qty := range state.Consumed {
		out.Consumed[k] = qty
	}
	return out, nil
}
