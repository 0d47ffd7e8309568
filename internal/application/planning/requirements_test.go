package planning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
)

type failingLookup struct{}

func (failingLookup) Resolve(context.Context, string) (ingredient.Resolution, error) {
	return ingredient.Resolution{}, errors.New("lookup offline")
}

func mealsFor(t *testing.T, dishes ...string) []*meal.Meal {
	t.Helper()
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	out := make([]*meal.Meal, 0, len(dishes))
	for i, dish := range dishes {
		m, err := meal.New("u1", day.AddDate(0, 0, i/2), []meal.Type{meal.Lunch, meal.Dinner}[i%2], dish)
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func counts(req Requirements) map[string]string {
	out := map[string]string{}
	for key, qty := range req.Counts {
		out[key] = qty.String()
	}
	return out
}

func TestAggregate(t *testing.T) {
	aggregator := NewRequirementAggregator(ingredient.NewResolver(nil), nil)

	tests := []struct {
		name   string
		dishes []string
		want   map[string]string
	}{
		{
			name:   "no meals",
			dishes: nil,
			want:   map[string]string{},
		},
		{
			name:   "omelette weights eggs",
			dishes: []string{"Tortilla de patata"},
			want:   map[string]string{"huevos": "5", "patatas": "1", "cebolla": "1"},
		},
		{
			name:   "pepper weight depends on dish",
			dishes: []string{"Fajitas", "Pimientos rellenos"},
			want: map[string]string{
				"pan de fajita": "1",
				"carne picada":  "0.5",
				"pimiento":      "0.75",
				"cebolla":       "1",
			},
		},
		{
			name:   "repeated meals add up",
			dishes: []string{"Sopa", "sopa", "SOPA"},
			want:   map[string]string{"sopa": "3"},
		},
		{
			name:   "generated split",
			dishes: []string{"Pollo con patatas fritas"},
			want:   map[string]string{"pollo": "1", "patatas": "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := aggregator.Aggregate(context.Background(), mealsFor(t, tt.dishes...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, counts(req))
		})
	}
}

func TestAggregate_DisplayNames(t *testing.T) {
	aggregator := NewRequirementAggregator(ingredient.NewResolver(nil), nil)

	req, err := aggregator.Aggregate(context.Background(), mealsFor(t, "Ensalada de garbanzos", "Huevos rotos"))
	require.NoError(t, err)

	assert.Equal(t, "Atún", req.DisplayName("atun"))
	assert.Equal(t, "Huevos", req.DisplayName("huevos"))
	assert.Equal(t, "missing", req.DisplayName("missing"))
	assert.Equal(t, []string{"atun", "cebolla", "garbanzos", "huevos", "pimiento"}, req.Keys())
}

func TestAggregate_LookupFailure(t *testing.T) {
	aggregator := NewRequirementAggregator(failingLookup{}, nil)

	_, err := aggregator.Aggregate(context.Background(), mealsFor(t, "Sopa"))

	assert.ErrorContains(t, err, "lookup offline")
}

func TestDeficits(t *testing.T) {
	required := map[string]shared.Quantity{
		"huevos":  shared.Whole(5),
		"patatas": shared.Whole(1),
		"cebolla": shared.Quarters(6),
		"atun":    shared.Quarters(2),
	}
	onHand := map[string]shared.Quantity{
		"huevos":  shared.Unlimited(),
		"cebolla": shared.Whole(1),
		"atun":    shared.Whole(3),
		"leche":   shared.Whole(2),
	}

	got := Deficits(required, onHand)

	assert.Equal(t, map[string]shared.Quantity{
		"patatas": shared.Whole(1),
		"cebolla": shared.Quarters(2),
	}, got)
}

func TestApplySuppression(t *testing.T) {
	deficits := map[string]shared.Quantity{
		"patatas": shared.Whole(2),
		"cebolla": shared.Whole(1),
	}
	consumed := map[string]shared.Quantity{
		"patatas": shared.Whole(1),
		"cebolla": shared.Whole(4),
		"pizza":   shared.Whole(1),
	}

	got := ApplySuppression(deficits, consumed)

	assert.Equal(t, "1", got["patatas"].String())
	require.Contains(t, got, "cebolla")
	assert.True(t, got["cebolla"].IsZero())
	assert.NotContains(t, got, "pizza")
}

func TestPlanChanges(t *testing.T) {
	auto := func(name string, qty shared.Quantity) *shopping.Item {
		item, err := shopping.NewAutoItem("u1", name, qty)
		require.NoError(t, err)
		return item
	}

	eggs := auto("Huevos", shared.Whole(5))
	eggsAgain := auto("huevo", shared.Whole(2))
	onion := auto("Cebolla", shared.Whole(2))
	pizza := auto("Pizza", shared.Whole(1))
	rice := auto("Arroz", shared.Whole(1))

	required := Requirements{DisplayNames: map[string]string{
		"huevos":  "Huevos",
		"cebolla": "Cebolla",
		"patatas": "Patatas",
		"arroz":   "Arroz",
	}}
	target := map[string]shared.Quantity{
		"huevos":  shared.Whole(5),
		"cebolla": shared.Whole(1),
		"patatas": shared.Whole(1),
		"arroz":   {},
	}

	plan := planChanges([]*shopping.Item{eggs, eggsAgain, onion, pizza, rice}, target, required)

	assert.Equal(t, []*shopping.Item{eggsAgain}, plan.duplicates)
	require.Len(t, plan.upserts, 2)
	assert.Equal(t, "cebolla", plan.upserts[0].key)
	assert.Same(t, onion, plan.upserts[0].item)
	assert.Equal(t, "patatas", plan.upserts[1].key)
	assert.Nil(t, plan.upserts[1].item)
	assert.ElementsMatch(t, []*shopping.Item{rice, pizza}, plan.stale)
}
