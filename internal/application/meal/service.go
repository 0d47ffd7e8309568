// Package meal provides the application layer for meal planning.
// Every change to a meal of the current week refreshes the shopping list.
package meal

import (
	"context"
	stderrors "errors"
	"sort"

	"go.uber.org/zap"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/ports/inbound"
	"github.com/planifia/planner/internal/ports/outbound"
	"github.com/planifia/planner/pkg/errors"
)

// MealService implements the meal use cases
type MealService struct {
	meals  outbound.MealRepository
	lookup outbound.DishIngredientLookup
	sync   inbound.ReconciliationService
	clock  shared.Clock
	logger *zap.Logger
}

// NewMealService creates a new meal service
func NewMealService(
	meals outbound.MealRepository,
	lookup outbound.DishIngredientLookup,
	sync inbound.ReconciliationService,
	clock shared.Clock,
	logger *zap.Logger,
) inbound.MealService {
	if clock == nil {
		clock = shared.SystemClock(nil)
	}
	return &MealService{
		meals:  meals,
		lookup: lookup,
		sync:   sync,
		clock:  clock,
		logger: logger.Named("meal-service"),
	}
}

// ScheduleMeal puts a dish into a slot, replacing whatever was there
func (s *MealService) ScheduleMeal(ctx context.Context, cmd inbound.ScheduleMealCommand) (*inbound.MealDTO, error) {
	mealType, err := meal.ParseType(cmd.MealType)
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithMetadata("meal_type", cmd.MealType)
	}

	entity, err := meal.New(cmd.UserID, cmd.Date, mealType, cmd.DishName)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	replaced, err := s.meals.DeleteSlot(ctx, entity.UserID, entity.Date, entity.Type)
	if err != nil {
		return nil, errors.NewDatabaseError("clear meal slot", err)
	}
	if err := s.meals.Create(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("create meal", err)
	}

	s.logger.Info("Meal scheduled",
		zap.String("user_id", entity.UserID),
		zap.String("meal_id", entity.ID),
		zap.String("date", entity.Date.Format(meal.DateLayout)),
		zap.String("type", string(entity.Type)),
		zap.Int64("replaced", replaced),
	)

	if err := s.refreshIfCurrent(ctx, entity); err != nil {
		return nil, err
	}

	dto := toDTO(entity)
	return &dto, nil
}

// DeleteMeal removes a meal owned by userID
func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID string) error {
	entity, err := s.meals.FindByID(ctx, mealID)
	if err != nil {
		if stderrors.Is(err, meal.ErrMealNotFound) {
			return errors.NewMealNotFoundError(mealID)
		}
		return errors.NewDatabaseError("find meal", err)
	}
	if entity.UserID != userID {
		return errors.NewMealNotFoundError(mealID)
	}

	if err := s.meals.Delete(ctx, mealID); err != nil {
		return errors.NewDatabaseError("delete meal", err)
	}

	s.logger.Info("Meal deleted", zap.String("user_id", userID), zap.String("meal_id", mealID))
	return s.refreshIfCurrent(ctx, entity)
}

// ListMeals returns every meal of userID ordered by date, lunch first
func (s *MealService) ListMeals(ctx context.Context, userID string) ([]inbound.MealDTO, error) {
	meals, err := s.meals.List(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list meals", err)
	}
	return toDTOs(meals), nil
}

// ListWeek returns the meals of the week identified by weekKey
func (s *MealService) ListWeek(ctx context.Context, userID, weekKey string) ([]inbound.MealDTO, error) {
	if weekKey == "" {
		weekKey = meal.WeekKey(s.clock())
	}
	if _, err := meal.ParseWeekKey(weekKey); err != nil {
		return nil, errors.NewValidationError(err.Error()).WithMetadata("week", weekKey)
	}

	meals, err := s.meals.List(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list meals", err)
	}
	return toDTOs(meal.FilterWeek(meals, weekKey)), nil
}

// ResolveDish previews the ingredients a dish contributes
func (s *MealService) ResolveDish(ctx context.Context, dishName string) (*inbound.ResolutionDTO, error) {
	resolution, err := s.lookup.Resolve(ctx, dishName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve dish")
	}

	keys := make([]string, len(resolution.Ingredients))
	for i, name := range resolution.Ingredients {
		keys[i] = ingredient.Key(name)
	}
	return &inbound.ResolutionDTO{
		DishName:    dishName,
		Ingredients: resolution.Ingredients,
		Category:    resolution.Category,
		Keys:        keys,
	}, nil
}

// refreshIfCurrent resyncs when m belongs to the week of now. Refresh
// itself turns into a full resync when the tracked week is stale.
func (s *MealService) refreshIfCurrent(ctx context.Context, m *meal.Meal) error {
	now := s.clock()
	if !m.InWeek(meal.WeekKey(now)) {
		return nil
	}
	if _, err := s.sync.Refresh(ctx, m.UserID, now); err != nil {
		return errors.Wrap(err, "failed to refresh shopping list")
	}
	return nil
}

func toDTOs(meals []*meal.Meal) []inbound.MealDTO {
	sort.SliceStable(meals, func(i, j int) bool {
		if !meals[i].Date.Equal(meals[j].Date) {
			return meals[i].Date.Before(meals[j].Date)
		}
		return meals[i].Type == meal.Lunch && meals[j].Type == meal.Dinner
	})

	out := make([]inbound.MealDTO, len(meals))
	for i, m := range meals {
		out[i] = toDTO(m)
	}
	return out
}

func toDTO(m *meal.Meal) inbound.MealDTO {
	return inbound.MealDTO{
		ID:       m.ID,
		UserID:   m.UserID,
		Date:     m.Date.Format(meal.DateLayout),
		MealType: string(m.Type),
		DishName: m.DishName,
	}
}
