package ingredient

import (
	"strings"

	"github.com/planifia/planner/internal/domain/shared"
)

// DefaultWeight is what one serving contributes when no rule applies.
var DefaultWeight = shared.Whole(1)

// WeightRule scales one ingredient key inside dishes whose normalized name
// contains any of DishContains. An empty DishContains matches every dish.
type WeightRule struct {
	Key          string
	DishContains []string
	Weight       shared.Quantity
}

func (r WeightRule) applies(normalizedDish, key string) bool {
	if r.Key != key {
		return false
	}
	if len(r.DishContains) == 0 {
		return true
	}
	for _, fragment := range r.DishContains {
		if strings.Contains(normalizedDish, fragment) {
			return true
		}
	}
	return false
}

// WeightPolicy returns how much of an ingredient one serving of a dish uses.
type WeightPolicy struct {
	rules []WeightRule
}

// defaultWeightRules is evaluated top to bottom; the first match wins.
var defaultWeightRules = []WeightRule{
	{Key: "pimiento", DishContains: []string{"ensalada de garbanzos", "fajita"}, Weight: shared.Quarters(1)},
	{Key: "pimiento", Weight: shared.Quarters(2)},
	{Key: "garbanzos", DishContains: []string{"ensalada de garbanzos"}, Weight: shared.Quarters(2)},
	{Key: "atun", DishContains: []string{"ensalada de garbanzos"}, Weight: shared.Quarters(2)},
	{Key: "carne picada", Weight: shared.Quarters(2)},
	{Key: "huevos", DishContains: []string{"tortilla"}, Weight: shared.Whole(5)},
}

// NewWeightPolicy returns the policy with the built-in exception table.
func NewWeightPolicy() *WeightPolicy {
	return &WeightPolicy{rules: defaultWeightRules}
}

// NewWeightPolicyWithRules builds a policy from custom rules. Fragments are
// normalized so callers may pass accented or mixed-case text.
func NewWeightPolicyWithRules(rules []WeightRule) *WeightPolicy {
	normalized := make([]WeightRule, len(rules))
	for i, rule := range rules {
		fragments := make([]string, len(rule.DishContains))
		for j, fragment := range rule.DishContains {
			fragments[j] = Normalize(fragment)
		}
		normalized[i] = WeightRule{Key: rule.Key, DishContains: fragments, Weight: rule.Weight}
	}
	return &WeightPolicy{rules: normalized}
}

// Weight returns the per-serving weight of key in dishName.
func (p *WeightPolicy) Weight(dishName, key string) shared.Quantity {
	dish := Normalize(dishName)
	for _, rule := range p.rules {
		if rule.applies(dish, key) {
			return rule.Weight
		}
	}
	return DefaultWeight
}
