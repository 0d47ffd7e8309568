package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/ports/inbound"
	apperrors "github.com/planifia/planner/pkg/errors"
)

// MealHandlers serves meal planning and dish resolution
type MealHandlers struct {
	responder
	meals inbound.MealService
}

// NewMealHandlers creates meal handlers
func NewMealHandlers(meals inbound.MealService, logger *zap.Logger) *MealHandlers {
	return &MealHandlers{responder: newResponder(logger), meals: meals}
}

// ScheduleMealRequest is the body of POST /meals
type ScheduleMealRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	MealType string `json:"meal_type" validate:"required"`
	DishName string `json:"dish_name" validate:"required,max=255"`
}

// List handles GET /users/{userID}/meals, optionally narrowed by ?week=
func (h *MealHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var (
		meals []inbound.MealDTO
		err   error
	)
	if week, ok := r.URL.Query()["week"]; ok {
		meals, err = h.meals.ListWeek(r.Context(), userID, strings.TrimSpace(week[0]))
	} else {
		meals, err = h.meals.ListMeals(r.Context(), userID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, meals)
}

// Schedule handles POST /users/{userID}/meals
func (h *MealHandlers) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleMealRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	date, err := meal.ParseDate(req.Date)
	if err != nil {
		h.writeError(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	dto, err := h.meals.ScheduleMeal(r.Context(), inbound.ScheduleMealCommand{
		UserID:   chi.URLParam(r, "userID"),
		Date:     date,
		MealType: req.MealType,
		DishName: req.DishName,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: dto})
}

// Delete handles DELETE /users/{userID}/meals/{mealID}
func (h *MealHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.meals.DeleteMeal(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "mealID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resolve handles GET /dishes/resolve?name=
func (h *MealHandlers) Resolve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		h.writeError(w, r, apperrors.NewValidationError("name is required"))
		return
	}

	dto, err := h.meals.ResolveDish(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, dto)
}
