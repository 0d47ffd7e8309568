package shopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planifia/planner/internal/domain/shared"
)

func qty(q shared.Quantity) *shared.Quantity { return &q }

func TestNewAutoItem(t *testing.T) {
	item, err := NewAutoItem("u-1", "Huevos", shared.Whole(5))
	require.NoError(t, err)

	assert.Equal(t, CategoryIngredients, item.Category)
	assert.False(t, item.Manual)
	assert.False(t, item.Purchased)
	assert.Equal(t, "5", item.Required().String())
	assert.Equal(t, "huevos", item.Key())

	_, err = NewAutoItem("u-1", "Huevos", shared.Quantity{})
	assert.ErrorIs(t, err, ErrRequiredQuantity)

	_, err = NewAutoItem("u-1", "Huevos", shared.Unlimited())
	assert.ErrorIs(t, err, ErrRequiredQuantity)
}

func TestItem_Retarget(t *testing.T) {
	auto, err := NewAutoItem("u-1", "Pimiento", shared.Quarters(1))
	require.NoError(t, err)

	require.NoError(t, auto.Retarget("Pimiento", shared.Quarters(3)))
	assert.True(t, auto.Matches("Pimiento", shared.Quarters(3)))
	assert.ErrorIs(t, auto.Retarget("Pimiento", shared.Quantity{}), ErrRequiredQuantity)

	manual, err := NewManualItem("u-1", "Servilletas")
	require.NoError(t, err)
	assert.ErrorIs(t, manual.Retarget("Servilletas", shared.Whole(1)), ErrManualItemImmutable)
}

func TestSyncState(t *testing.T) {
	var missing *SyncState
	assert.Equal(t, StatusUnsynced, missing.Status())
	assert.True(t, missing.NeedsRollover("2024-06-03"))
	assert.Empty(t, missing.ConsumedFor("2024-06-03"))

	state := NewSyncState("2024-06-03")
	state.Consumed["patatas"] = shared.Whole(1)

	assert.Equal(t, StatusSynced, state.Status())
	assert.False(t, state.NeedsRollover("2024-06-03"))
	assert.True(t, state.NeedsRollover("2024-06-10"))
	assert.Equal(t, "1", state.ConsumedFor("2024-06-03")["patatas"].String())
	assert.Empty(t, state.ConsumedFor("2024-06-10"))

	copied := state.ConsumedFor("2024-06-03")
	copied["patatas"] = shared.Whole(9)
	assert.Equal(t, "1", state.Consumed["patatas"].String())
}

func TestGroupItems(t *testing.T) {
	items := []*Item{
		{ID: "1", IngredientName: "tomate", Manual: false, RequiredQuantity: qty(shared.Whole(1))},
		{ID: "2", IngredientName: "Tomate ", Manual: false, RequiredQuantity: qty(shared.Quarters(2))},
		{ID: "3", IngredientName: "Tomate", Manual: true},
		{ID: "4", IngredientName: "Aceite", Manual: true, Purchased: true},
		{ID: "5", IngredientName: "Cebolla", Manual: false, Purchased: true},
		{ID: "6", IngredientName: "cebolla", Manual: false},
	}

	groups := GroupItems(items)

	require.Len(t, groups, 4)

	assert.Equal(t, "Cebolla", groups[0].Name)
	assert.False(t, groups[0].Purchased)
	assert.Equal(t, []string{"5", "6"}, groups[0].ItemIDs)
	assert.Equal(t, "2", groups[0].Quantity.String())

	assert.Equal(t, "Tomate", groups[1].Name)
	assert.Equal(t, "1.5", groups[1].Quantity.String())
	assert.Equal(t, []string{"1", "2"}, groups[1].ItemIDs)

	assert.Equal(t, "Tomate", groups[2].Name)
	assert.True(t, groups[2].Manual)

	assert.Equal(t, "Aceite", groups[3].Name)
	assert.True(t, groups[3].Purchased)
}
