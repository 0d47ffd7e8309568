package gorm

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/planifia/planner/internal/ports/outbound"
)

// ShoppingNotesRepository implements the notes repository interface using GORM
type ShoppingNotesRepository struct {
	db *gorm.DB
}

// NewShoppingNotesRepository creates a new notes repository
func NewShoppingNotesRepository(db *gorm.DB) outbound.ShoppingNotesRepository {
	return &ShoppingNotesRepository{db: db}
}

// Get returns the notes of a user, empty when none were saved
func (r *ShoppingNotesRepository) Get(ctx context.Context, userID string) (string, error) {
	var model ShoppingNotesModel

	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&model)
	if result.Error != nil {
		return "", result.Error
	}
	return model.Notes, nil
}

// Update replaces the notes of a user
func (r *ShoppingNotesRepository) Update(ctx context.Context, userID, notes string) (string, error) {
	model := &ShoppingNotesModel{UserID: userID, Notes: notes}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"notes", "updated_at"}),
	}).Create(model)
	if result.Error != nil {
		return "", result.Error
	}
	return model.Notes, nil
}
