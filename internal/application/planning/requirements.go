// Package planning turns the meals of a week into the auto-generated part of
// the shopping list.
//
// The pipeline is aggregate → deficits → suppression → reconcile. Every
// stage but the last is a pure function of its inputs; Engine does the I/O.
package planning

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/ports/outbound"
)

// Requirements is the gross weekly need per canonical key.
type Requirements struct {
	Counts       map[string]shared.Quantity
	DisplayNames map[string]string
}

// Keys returns the requirement keys in sorted order.
func (r Requirements) Keys() []string {
	keys := make([]string, 0, len(r.Counts))
	for key := range r.Counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// DisplayName returns the label recorded for key, or key itself.
func (r Requirements) DisplayName(key string) string {
	if name, ok := r.DisplayNames[key]; ok && name != "" {
		return name
	}
	return key
}

// RequirementAggregator sums weighted ingredient requirements over meals.
type RequirementAggregator struct {
	lookup  outbound.DishIngredientLookup
	weights *ingredient.WeightPolicy
}

// NewRequirementAggregator wires a dish lookup to a weight policy.
func NewRequirementAggregator(lookup outbound.DishIngredientLookup, weights *ingredient.WeightPolicy) *RequirementAggregator {
	if weights == nil {
		weights = ingredient.NewWeightPolicy()
	}
	return &RequirementAggregator{lookup: lookup, weights: weights}
}

// Aggregate resolves every meal and adds its weighted ingredients. The
// caller restricts meals to the target week. Only lookup failures surface
// as errors; the dictionary resolver has none.
func (a *RequirementAggregator) Aggregate(ctx context.Context, meals []*meal.Meal) (Requirements, error) {
	req := Requirements{
		Counts:       map[string]shared.Quantity{},
		DisplayNames: map[string]string{},
	}

	for _, m := range meals {
		resolution, err := a.lookup.Resolve(ctx, m.DishName)
		if err != nil {
			return Requirements{}, fmt.Errorf("resolve %q: %w", m.DishName, err)
		}

		for _, raw := range resolution.Ingredients {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			canonical := ingredient.Canonicalize(raw)
			weight := a.weights.Weight(m.DishName, canonical.Key)

			req.Counts[canonical.Key] = req.Counts[canonical.Key].Add(weight)
			if _, seen := req.DisplayNames[canonical.Key]; !seen {
				req.DisplayNames[canonical.Key] = canonical.DisplayName
			}
		}
	}

	return req, nil
}

// Deficits nets requirements against on-hand stock keyed by canonical key.
// Unlimited stock zeroes the deficit; missing stock counts as zero. Only
// strictly positive deficits are returned.
func Deficits(required map[string]shared.Quantity, onHand map[string]shared.Quantity) map[string]shared.Quantity {
	out := make(map[string]shared.Quantity, len(required))
	for key, need := range required {
		missing := need.SubFloor(onHand[key])
		if missing.IsPositive() {
			out[key] = missing
		}
	}
	return out
}

// ApplySuppression subtracts the ledger from deficits, floored at zero.
// Keys absent from deficits are ignored. Keys whose deficit drops to zero
// stay in the result with a zero value so reconciliation can delete them.
func ApplySuppression(deficits, consumed map[string]shared.Quantity) map[string]shared.Quantity {
	out := make(map[string]shared.Quantity, len(deficits))
	for key, deficit := range deficits {
		out[key] = deficit.SubFloor(consumed[key])
	}
	return out
}
