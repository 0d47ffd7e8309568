// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	gormModels "github.com/planifia/planner/internal/infrastructure/persistence/gorm"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	inMemory := dbPath == "" || dbPath == ":memory:"
	if inMemory {
		dbPath = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)

	// Run auto-migration
	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase plans a demo week for userID around now, unless the user
// already has meals
func SeedDatabase(ctx context.Context, db *gorm.DB, userID string, now time.Time) error {
	meals := gormModels.NewMealRepository(db)
	existing, err := meals.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check demo meals: %w", err)
	}
	if len(existing) > 0 {
		return nil // Already seeded
	}

	monday := meal.WeekStart(now)
	demoWeek := []struct {
		day  int
		typ  meal.Type
		dish string
	}{
		{0, meal.Lunch, "Tortilla de patata"},
		{0, meal.Dinner, "Ensalada"},
		{1, meal.Lunch, "Macarrones con pesto"},
		{2, meal.Dinner, "Fajitas"},
		{3, meal.Lunch, "Ensalada de garbanzos"},
		{4, meal.Dinner, "Pizza casera"},
	}
	for _, entry := range demoWeek {
		m, err := meal.New(userID, monday.AddDate(0, 0, entry.day), entry.typ, entry.dish)
		if err != nil {
			return fmt.Errorf("failed to build demo meal: %w", err)
		}
		if err := meals.Create(ctx, m); err != nil {
			return fmt.Errorf("failed to create demo meal: %w", err)
		}
	}

	inventory := gormModels.NewInventoryRepository(db)
	for name, qty := range map[string]shared.Quantity{
		"Huevos": shared.Whole(6),
		"Sal":    shared.Unlimited(),
		"Tomate": shared.Whole(2),
	} {
		if _, err := inventory.UpsertByName(ctx, userID, name, qty); err != nil {
			return fmt.Errorf("failed to create demo inventory: %w", err)
		}
	}

	return nil
}
