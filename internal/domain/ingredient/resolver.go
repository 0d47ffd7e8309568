package ingredient

import (
	"context"
	"regexp"
	"strings"
)

// Category records where a resolution came from.
type Category string

const (
	CategoryDictionary Category = "Dictionary"
	CategoryMixed      Category = "Mixed"
	CategoryGenerated  Category = "Generated"
)

// Resolution is the ingredient breakdown of one dish.
type Resolution struct {
	Ingredients []string `json:"ingredients"`
	Category    Category `json:"category"`
}

// separators split composite dish names. Matching is case-insensitive.
var separators = []string{" con ", " y ", " and ", " with ", ",", " w/ ", " + "}

var separatorPattern = buildSeparatorPattern(separators)

func buildSeparatorPattern(seps []string) *regexp.Regexp {
	quoted := make([]string, len(seps))
	for i, sep := range seps {
		quoted[i] = regexp.QuoteMeta(sep)
	}
	return regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
}

// Resolver resolves dish names against a curated dictionary.
type Resolver struct {
	dictionary Dictionary
}

// NewResolver creates a resolver over dict, or DefaultDictionary when dict is empty.
func NewResolver(dict Dictionary) *Resolver {
	if len(dict) == 0 {
		dict = DefaultDictionary
	}
	return &Resolver{dictionary: dict}
}

// Resolve breaks a dish into ingredients. It never returns an error; the
// signature matches lookups that call external services.
func (r *Resolver) Resolve(_ context.Context, dishName string) (Resolution, error) {
	return r.ResolveDish(dishName), nil
}

// ResolveDish is the context-free form of Resolve.
func (r *Resolver) ResolveDish(dishName string) Resolution {
	if ingredients, ok := r.dictionary.Lookup(dishName); ok {
		return Resolution{Ingredients: ingredients, Category: CategoryDictionary}
	}

	parts := SplitDish(dishName)
	if len(parts) == 0 {
		return Resolution{Ingredients: []string{}, Category: CategoryGenerated}
	}

	ingredients := make([]string, 0, len(parts))
	hits := 0
	for _, part := range parts {
		if found, ok := r.dictionary.Lookup(part); ok {
			ingredients = append(ingredients, found...)
			hits++
			continue
		}
		ingredients = append(ingredients, Capitalize(part))
	}

	return Resolution{Ingredients: ingredients, Category: categoryFor(hits, len(parts))}
}

// SplitDish splits a dish name on conjunctions, trimming parts and dropping
// empty ones.
func SplitDish(dishName string) []string {
	raw := separatorPattern.Split(dishName, -1)
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func categoryFor(hits, total int) Category {
	switch {
	case hits == total:
		return CategoryDictionary
	case hits > 0:
		return CategoryMixed
	default:
		return CategoryGenerated
	}
}
