package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm/logger"

	"github.com/planifia/planner/internal/domain/inventory"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	gormrepo "github.com/planifia/planner/internal/infrastructure/persistence/gorm"
	"github.com/planifia/planner/internal/infrastructure/persistence/sqlite"
	"github.com/planifia/planner/internal/ports/outbound"
)

type RepositoryTestSuite struct {
	suite.Suite
	ctx       context.Context
	meals     outbound.MealRepository
	inventory outbound.InventoryRepository
	items     outbound.ShoppingItemRepository
	states    outbound.SyncStateRepository
	notes     outbound.ShoppingNotesRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	// A file per test keeps shared-cache memory databases from leaking.
	db, err := sqlite.SetupDatabase(s.T().TempDir()+"/planner.db", logger.Silent)
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s.meals = gormrepo.NewMealRepository(db)
	s.inventory = gormrepo.NewInventoryRepository(db)
	s.items = gormrepo.NewShoppingItemRepository(db)
	s.states = gormrepo.NewSyncStateRepository(db)
	s.notes = gormrepo.NewShoppingNotesRepository(db)
}

func (s *RepositoryTestSuite) TestMealRoundTrip() {
	day := time.Date(2024, 6, 5, 20, 0, 0, 0, time.UTC)
	m, err := meal.New("u1", day, meal.Dinner, "Fajitas")
	s.Require().NoError(err)
	s.Require().NoError(s.meals.Create(s.ctx, m))

	found, err := s.meals.FindByID(s.ctx, m.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), m, found)

	list, err := s.meals.List(s.ctx, "u1")
	s.Require().NoError(err)
	assert.Len(s.T(), list, 1)

	other, err := s.meals.List(s.ctx, "u2")
	s.Require().NoError(err)
	assert.Empty(s.T(), other)
}

func (s *RepositoryTestSuite) TestMealDeleteSlot() {
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	for _, mt := range []meal.Type{meal.Lunch, meal.Dinner} {
		m, err := meal.New("u1", day, mt, "Sopa")
		s.Require().NoError(err)
		s.Require().NoError(s.meals.Create(s.ctx, m))
	}

	removed, err := s.meals.DeleteSlot(s.ctx, "u1", day.Add(13*time.Hour), meal.Lunch)
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(1), removed)

	list, err := s.meals.List(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	assert.Equal(s.T(), meal.Dinner, list[0].Type)

	err = s.meals.Delete(s.ctx, "missing")
	assert.ErrorIs(s.T(), err, meal.ErrMealNotFound)
	_, err = s.meals.FindByID(s.ctx, "missing")
	assert.ErrorIs(s.T(), err, meal.ErrMealNotFound)
}

func (s *RepositoryTestSuite) TestInventoryUpsertByName() {
	created, err := s.inventory.UpsertByName(s.ctx, "u1", "Huevos", shared.Whole(6))
	s.Require().NoError(err)

	updated, err := s.inventory.UpsertByName(s.ctx, "u1", " HUEVOS ", shared.Unlimited())
	s.Require().NoError(err)
	assert.Equal(s.T(), created.ID, updated.ID)
	assert.Equal(s.T(), "HUEVOS", updated.IngredientName)

	variant, err := s.inventory.UpsertByName(s.ctx, "u1", "Huevo cocido", shared.Unlimited())
	s.Require().NoError(err)
	assert.Equal(s.T(), created.ID, variant.ID)
	assert.Equal(s.T(), "Huevo cocido", variant.IngredientName)

	found, err := s.inventory.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	assert.True(s.T(), found.Quantity.IsUnlimited())

	fraction, err := s.inventory.UpsertByName(s.ctx, "u1", "Cebolla", shared.Quarters(3))
	s.Require().NoError(err)
	found, err = s.inventory.FindByID(s.ctx, fraction.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), "0.75", found.Quantity.String())

	removed, err := s.inventory.UpsertByName(s.ctx, "u1", "huevos", shared.Quantity{})
	s.Require().NoError(err)
	assert.Nil(s.T(), removed)

	list, err := s.inventory.List(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	assert.Equal(s.T(), "Cebolla", list[0].IngredientName)

	err = s.inventory.Delete(s.ctx, created.ID)
	assert.ErrorIs(s.T(), err, inventory.ErrItemNotFound)
}

func (s *RepositoryTestSuite) TestShoppingItems() {
	auto, err := shopping.NewAutoItem("u1", "Atún", shared.Quarters(2))
	s.Require().NoError(err)
	manual, err := shopping.NewManualItem("u1", "Pan")
	s.Require().NoError(err)
	s.Require().NoError(s.items.Create(s.ctx, auto))
	s.Require().NoError(s.items.Create(s.ctx, manual))

	found, err := s.items.FindByID(s.ctx, auto.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), "0.5", found.Required().String())
	assert.Equal(s.T(), shopping.CategoryIngredients, found.Category)
	assert.False(s.T(), found.Manual)

	s.Require().NoError(found.Retarget("Atún", shared.Whole(2)))
	found.Purchased = true
	s.Require().NoError(s.items.Update(s.ctx, found))

	again, err := s.items.FindByID(s.ctx, auto.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), "2", again.Required().String())
	assert.True(s.T(), again.Purchased)

	list, err := s.items.List(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	assert.Nil(s.T(), list[1].RequiredQuantity)
	assert.True(s.T(), list[1].Manual)

	ghost, err := shopping.NewManualItem("u1", "Ghost")
	s.Require().NoError(err)
	assert.ErrorIs(s.T(), s.items.Update(s.ctx, ghost), shopping.ErrItemNotFound)

	s.Require().NoError(s.items.Delete(s.ctx, manual.ID))
	assert.ErrorIs(s.T(), s.items.Delete(s.ctx, manual.ID), shopping.ErrItemNotFound)
}

func (s *RepositoryTestSuite) TestSyncState() {
	missing, err := s.states.Get(s.ctx, "u1")
	s.Require().NoError(err)
	assert.Nil(s.T(), missing)

	state := shopping.NewSyncState("2024-06-03")
	state.Consumed["patatas"] = shared.Whole(1)
	state.Consumed["pimiento"] = shared.Quarters(1)
	_, err = s.states.Update(s.ctx, "u1", state)
	s.Require().NoError(err)

	stored, err := s.states.Get(s.ctx, "u1")
	s.Require().NoError(err)
	assert.Equal(s.T(), "2024-06-03", stored.WeekKey)
	assert.Equal(s.T(), "1", stored.Consumed["patatas"].String())
	assert.Equal(s.T(), "0.25", stored.Consumed["pimiento"].String())

	_, err = s.states.Update(s.ctx, "u1", shopping.NewSyncState("2024-06-10"))
	s.Require().NoError(err)

	stored, err = s.states.Get(s.ctx, "u1")
	s.Require().NoError(err)
	assert.Equal(s.T(), "2024-06-10", stored.WeekKey)
	assert.Empty(s.T(), stored.Consumed)
}

func (s *RepositoryTestSuite) TestNotes() {
	notes, err := s.notes.Get(s.ctx, "u1")
	s.Require().NoError(err)
	assert.Empty(s.T(), notes)

	_, err = s.notes.Update(s.ctx, "u1", "first")
	s.Require().NoError(err)
	_, err = s.notes.Update(s.ctx, "u1", "second")
	s.Require().NoError(err)

	notes, err = s.notes.Get(s.ctx, "u1")
	s.Require().NoError(err)
	assert.Equal(s.T(), "second", notes)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func TestSeedDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.SetupDatabase(t.TempDir()+"/seed.db", logger.Silent)
	require.NoError(t, err)

	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sqlite.SeedDatabase(ctx, db, "demo", now))
	require.NoError(t, sqlite.SeedDatabase(ctx, db, "demo", now))

	meals, err := gormrepo.NewMealRepository(db).List(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, meals, 6)
	for _, m := range meals {
		assert.True(t, m.InWeek("2024-06-03"))
	}
}
