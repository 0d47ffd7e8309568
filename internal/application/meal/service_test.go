package meal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/planifia/planner/internal/application/planning"
	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/infrastructure/persistence/memory"
	"github.com/planifia/planner/internal/ports/inbound"
	apperrors "github.com/planifia/planner/pkg/errors"
	"github.com/planifia/planner/test/testutils"
)

var now = time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC)

type MealServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	userID  string
	meals   *memory.MealRepository
	items   *memory.ShoppingItemRepository
	service inbound.MealService
}

func (s *MealServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.userID = testutils.NewPlannerFactory(7).UserID()
	s.meals = memory.NewMealRepository()
	s.items = memory.NewShoppingItemRepository()

	logger := zaptest.NewLogger(s.T())
	resolver := ingredient.NewResolver(nil)
	engine := planning.NewEngine(
		s.meals,
		memory.NewInventoryRepository(),
		s.items,
		memory.NewSyncStateRepository(),
		planning.NewRequirementAggregator(resolver, nil),
		nil, nil, logger,
	)
	s.service = NewMealService(s.meals, resolver, engine, shared.FixedClock(now), logger)
}

func (s *MealServiceTestSuite) autoNames() []string {
	list, err := s.items.List(s.ctx, s.userID)
	s.Require().NoError(err)
	var names []string
	for _, item := range shopping.AutoItems(list) {
		names = append(names, item.IngredientName)
	}
	return names
}

func (s *MealServiceTestSuite) schedule(date time.Time, mealType, dish string) *inbound.MealDTO {
	dto, err := s.service.ScheduleMeal(s.ctx, inbound.ScheduleMealCommand{
		UserID: s.userID, Date: date, MealType: mealType, DishName: dish,
	})
	s.Require().NoError(err)
	return dto
}

func (s *MealServiceTestSuite) TestScheduleMealRefreshesList() {
	dto := s.schedule(now, "Lunch", "Arroz con pollo")

	assert.Equal(s.T(), "2024-06-05", dto.Date)
	assert.Equal(s.T(), "Lunch", dto.MealType)
	assert.ElementsMatch(s.T(), []string{"Arroz", "Pollo"}, s.autoNames())
}

func (s *MealServiceTestSuite) TestScheduleMealReplacesSlot() {
	s.schedule(now, "comida", "Sopa")
	s.schedule(now, "Lunch", "Pizza")

	meals, err := s.service.ListMeals(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.Len(s.T(), meals, 1)
	assert.Equal(s.T(), "Pizza", meals[0].DishName)
	assert.Equal(s.T(), []string{"Pizza"}, s.autoNames())
}

func (s *MealServiceTestSuite) TestScheduleMealOutsideWeekLeavesListAlone() {
	s.schedule(now.AddDate(0, 0, 7), "Dinner", "Sopa")

	assert.Empty(s.T(), s.autoNames())
}

func (s *MealServiceTestSuite) TestScheduleMealValidation() {
	tests := []struct {
		name string
		cmd  inbound.ScheduleMealCommand
	}{
		{"bad type", inbound.ScheduleMealCommand{UserID: s.userID, Date: now, MealType: "Brunch", DishName: "Sopa"}},
		{"empty dish", inbound.ScheduleMealCommand{UserID: s.userID, Date: now, MealType: "Lunch", DishName: "  "}},
		{"no user", inbound.ScheduleMealCommand{Date: now, MealType: "Dinner", DishName: "Sopa"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.ScheduleMeal(s.ctx, tt.cmd)
			assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed), "got %v", err)
		})
	}
}

func (s *MealServiceTestSuite) TestDeleteMeal() {
	dto := s.schedule(now, "Dinner", "Tortilla de patata")
	require.Len(s.T(), s.autoNames(), 3)

	require.NoError(s.T(), s.service.DeleteMeal(s.ctx, s.userID, dto.ID))

	assert.Empty(s.T(), s.autoNames())

	err := s.service.DeleteMeal(s.ctx, s.userID, dto.ID)
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeMealNotFound))
}

func (s *MealServiceTestSuite) TestDeleteMealOfAnotherUser() {
	dto := s.schedule(now, "Dinner", "Sopa")

	err := s.service.DeleteMeal(s.ctx, "intruder", dto.ID)

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeMealNotFound))
	assert.Equal(s.T(), []string{"Sopa"}, s.autoNames())
}

func (s *MealServiceTestSuite) TestListWeek() {
	s.schedule(now.AddDate(0, 0, 2), "Dinner", "Pizza")
	s.schedule(now, "Dinner", "Sopa")
	s.schedule(now, "Lunch", "Arroz")
	s.schedule(now.AddDate(0, 0, 7), "Lunch", "Alubias")

	week, err := s.service.ListWeek(s.ctx, s.userID, "")
	require.NoError(s.T(), err)

	var dishes []string
	for _, m := range week {
		dishes = append(dishes, m.DishName)
	}
	assert.Equal(s.T(), []string{"Arroz", "Sopa", "Pizza"}, dishes)

	next, err := s.service.ListWeek(s.ctx, s.userID, "2024-06-10")
	require.NoError(s.T(), err)
	require.Len(s.T(), next, 1)
	assert.Equal(s.T(), "Alubias", next[0].DishName)

	_, err = s.service.ListWeek(s.ctx, s.userID, "2024-06-11")
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
}

func (s *MealServiceTestSuite) TestResolveDish() {
	dto, err := s.service.ResolveDish(s.ctx, "Pollo con patatas fritas")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), ingredient.CategoryGenerated, dto.Category)
	assert.Equal(s.T(), []string{"Pollo", "Patatas fritas"}, dto.Ingredients)
	assert.Equal(s.T(), []string{"pollo", "patatas"}, dto.Keys)
}

func TestMealServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MealServiceTestSuite))
}

func TestScheduleMeal_RefreshFailureSurfaces(t *testing.T) {
	sync := &testutils.MockReconciliationService{}
	sync.On("Refresh", mock.Anything, "u1", now).Return(nil, apperrors.NewDatabaseError("list meals", assert.AnError))

	meals := memory.NewMealRepository()
	service := NewMealService(meals, ingredient.NewResolver(nil), sync, shared.FixedClock(now), zaptest.NewLogger(t))

	_, err := service.ScheduleMeal(context.Background(), inbound.ScheduleMealCommand{
		UserID: "u1", Date: now, MealType: "Lunch", DishName: "Sopa",
	})

	assert.True(t, apperrors.Is(err, apperrors.CodeDatabaseError))
	sync.AssertExpectations(t)

	stored, err := meals.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1, "the meal write is not rolled back")
}
