package meal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2024-06-03", "2024-06-03"}, // Monday
		{"2024-06-05", "2024-06-03"},
		{"2024-06-09", "2024-06-03"}, // Sunday
		{"2024-06-10", "2024-06-10"},
		{"2024-01-01", "2024-01-01"},
		{"2023-12-31", "2023-12-25"},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekKey(date(tt.day)))
		})
	}
}

func TestWeekKey_UsesWallClockDate(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)

	// Monday 00:30 in Madrid is still Sunday in UTC.
	now := time.Date(2024, 6, 10, 0, 30, 0, 0, madrid)

	assert.Equal(t, "2024-06-10", WeekKey(now))
	assert.Equal(t, "2024-06-03", WeekKey(now.UTC()))
}

func TestParseWeekKey(t *testing.T) {
	monday, err := ParseWeekKey("2024-06-03")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, monday.Weekday())

	_, err = ParseWeekKey("2024-06-04")
	assert.ErrorIs(t, err, ErrInvalidWeekKey)

	_, err = ParseWeekKey("June 3")
	assert.ErrorIs(t, err, ErrInvalidWeekKey)
}

func TestNew(t *testing.T) {
	t.Run("ValidMeal_ShouldTrimAndTruncate", func(t *testing.T) {
		m, err := New("u-1", time.Date(2024, 6, 5, 13, 45, 0, 0, time.UTC), Lunch, "  Sopa ")

		require.NoError(t, err)
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, "Sopa", m.DishName)
		assert.Equal(t, date("2024-06-05"), m.Date)
		assert.True(t, m.InWeek("2024-06-03"))
		assert.False(t, m.InWeek("2024-06-10"))
	})

	t.Run("Invalid_ShouldFail", func(t *testing.T) {
		_, err := New("u-1", date("2024-06-05"), Lunch, "   ")
		assert.ErrorIs(t, err, ErrDishNameRequired)

		_, err = New("", date("2024-06-05"), Lunch, "Sopa")
		assert.ErrorIs(t, err, ErrUserRequired)

		_, err = New("u-1", date("2024-06-05"), Type("Breakfast"), "Sopa")
		assert.ErrorIs(t, err, ErrInvalidMealType)
	})
}

func TestParseType(t *testing.T) {
	for input, want := range map[string]Type{"Lunch": Lunch, "comida": Lunch, "DINNER": Dinner, "Cena": Dinner} {
		got, err := ParseType(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseType("brunch")
	assert.ErrorIs(t, err, ErrInvalidMealType)
}

func TestFilterWeekAndSlots(t *testing.T) {
	a, _ := New("u-1", date("2024-06-03"), Lunch, "Sopa")
	b, _ := New("u-1", date("2024-06-03"), Lunch, "Pizza")
	c, _ := New("u-1", date("2024-06-11"), Dinner, "Arroz")

	assert.True(t, a.SameSlot(b))
	assert.False(t, a.SameSlot(c))
	assert.Equal(t, []*Meal{a, b}, FilterWeek([]*Meal{a, b, c}, "2024-06-03"))
	assert.True(t, SameWeek(date("2024-06-03"), date("2024-06-09")))
	assert.False(t, SameWeek(date("2024-06-09"), date("2024-06-10")))
}
