package gorm

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/ports/outbound"
)

// SyncStateRepository implements the sync state repository interface using GORM
type SyncStateRepository struct {
	db *gorm.DB
}

// NewSyncStateRepository creates a new sync state repository
func NewSyncStateRepository(db *gorm.DB) outbound.SyncStateRepository {
	return &SyncStateRepository{db: db}
}

// Get returns the state of a user, or nil when none was stored
func (r *SyncStateRepository) Get(ctx context.Context, userID string) (*shopping.SyncState, error) {
	var model SyncStateModel

	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&model)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return ModelToSyncState(&model)
}

// Update replaces the state of a user
func (r *SyncStateRepository) Update(ctx context.Context, userID string, state *shopping.SyncState) (*shopping.SyncState, error) {
	model := SyncStateToModel(userID, state)

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"week_key", "consumed", "updated_at"}),
	}).Create(model)
	if result.Error != nil {
		return nil, result.Error
	}
	return ModelToSyncState(model)
}
