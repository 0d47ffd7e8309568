package planning

import (
	"sort"

	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
)

type upsert struct {
	key         string
	displayName string
	qty         shared.Quantity
	item        *shopping.Item // nil means create
}

// changePlan is the minimal write set that moves the auto items onto target.
type changePlan struct {
	duplicates []*shopping.Item
	upserts    []upsert
	stale      []*shopping.Item
}

// planChanges diffs existing auto items against adjusted deficits. The first
// item seen per key is kept and later ones are duplicates. Items already
// showing the target name and quantity are left alone. An item is stale
// when its key has a zero target or no target at all.
func planChanges(autoItems []*shopping.Item, target map[string]shared.Quantity, required Requirements) changePlan {
	var plan changePlan

	byKey := make(map[string]*shopping.Item, len(autoItems))
	for _, item := range autoItems {
		key := item.Key()
		if _, ok := byKey[key]; ok {
			plan.duplicates = append(plan.duplicates, item)
			continue
		}
		byKey[key] = item
	}

	keys := make([]string, 0, len(target))
	for key := range target {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		qty := target[key]
		existing := byKey[key]

		if !qty.IsPositive() {
			if existing != nil {
				plan.stale = append(plan.stale, existing)
			}
			continue
		}

		name := required.DisplayName(key)
		if existing != nil && existing.Matches(name, qty) {
			continue
		}
		plan.upserts = append(plan.upserts, upsert{key: key, displayName: name, qty: qty, item: existing})
	}

	for _, item := range autoItems {
		key := item.Key()
		if byKey[key] != item {
			continue
		}
		if _, ok := target[key]; !ok {
			plan.stale = append(plan.stale, item)
		}
	}

	return plan
}
