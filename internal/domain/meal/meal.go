// Package meal holds planned meals and the Monday-based week arithmetic
// used to decide which meals feed the shopping list.
package meal

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for meal dates and week keys.
const DateLayout = "2006-01-02"

var (
	ErrDishNameRequired = errors.New("dish name is required")
	ErrUserRequired     = errors.New("user id is required")
	ErrInvalidMealType  = errors.New("meal type must be Lunch or Dinner")
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidWeekKey   = errors.New("week key must be the Monday of a week formatted as YYYY-MM-DD")
	ErrMealNotFound     = errors.New("meal not found")
)

// Type is the slot of the day a meal fills.
type Type string

const (
	Lunch  Type = "Lunch"
	Dinner Type = "Dinner"
)

// ParseType accepts the canonical names and the Spanish labels used by
// older clients.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lunch", "comida":
		return Lunch, nil
	case "dinner", "cena":
		return Dinner, nil
	}
	return "", ErrInvalidMealType
}

// Meal is one dish scheduled into a (user, date, type) slot.
type Meal struct {
	ID       string
	UserID   string
	Date     time.Time
	Type     Type
	DishName string
}

// New validates the input and returns a meal with a fresh id. The date is
// reduced to its calendar day.
func New(userID string, date time.Time, mealType Type, dishName string) (*Meal, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}
	dishName = strings.TrimSpace(dishName)
	if dishName == "" {
		return nil, ErrDishNameRequired
	}
	if mealType != Lunch && mealType != Dinner {
		return nil, ErrInvalidMealType
	}
	return &Meal{
		ID:       uuid.NewString(),
		UserID:   userID,
		Date:     CalendarDay(date),
		Type:     mealType,
		DishName: dishName,
	}, nil
}

// SameSlot reports whether m and o occupy the same (user, date, type) slot.
func (m *Meal) SameSlot(o *Meal) bool {
	return m.UserID == o.UserID && m.Type == o.Type && m.Date.Equal(o.Date)
}

// InWeek reports whether the meal falls in the week identified by weekKey.
func (m *Meal) InWeek(weekKey string) bool {
	return WeekKey(m.Date) == weekKey
}

// FilterWeek returns the meals that fall in the week identified by weekKey.
func FilterWeek(meals []*Meal, weekKey string) []*Meal {
	out := make([]*Meal, 0, len(meals))
	for _, m := range meals {
		if m.InWeek(weekKey) {
			out = append(out, m)
		}
	}
	return out
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
