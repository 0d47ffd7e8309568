package shopping

import (
	"sort"
	"strings"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/shared"
)

// Group folds list entries that share ownership and name into one row.
type Group struct {
	Name      string          `json:"name"`
	Manual    bool            `json:"manual"`
	Purchased bool            `json:"purchased"`
	Quantity  shared.Quantity `json:"quantity"`
	ItemIDs   []string        `json:"item_ids"`
}

// GroupItems groups items by (manual, lowercase trimmed name). Manual items
// count as one unit each; auto items count their required quantity, or one
// when it is unset. A group is purchased only when all members are.
// Unpurchased groups come first, then groups sort by name.
func GroupItems(items []*Item) []Group {
	index := map[string]int{}
	groups := make([]Group, 0, len(items))

	for _, item := range items {
		name := strings.TrimSpace(item.IngredientName)
		key := groupKey(item.Manual, name)

		qty := shared.Whole(1)
		if !item.Manual && item.RequiredQuantity != nil {
			qty = *item.RequiredQuantity
		}

		pos, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, Group{
				Name:      ingredient.Capitalize(name),
				Manual:    item.Manual,
				Purchased: item.Purchased,
				Quantity:  qty,
				ItemIDs:   []string{item.ID},
			})
			continue
		}

		g := &groups[pos]
		g.ItemIDs = append(g.ItemIDs, item.ID)
		g.Purchased = g.Purchased && item.Purchased
		g.Quantity = g.Quantity.Add(qty)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Purchased != groups[j].Purchased {
			return !groups[i].Purchased
		}
		return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
	})
	return groups
}

func groupKey(manual bool, name string) string {
	prefix := "auto:"
	if manual {
		prefix = "manual:"
	}
	return prefix + strings.ToLower(name)
}
