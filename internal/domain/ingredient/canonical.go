// Package ingredient turns dish names into ingredient lists and ingredient
// names into comparison keys.
//
// Everything here is pure: the dictionary, fold rules and weight table are
// package-level tables built once, and no function returns an error.
package ingredient

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Canonical is the comparison key and display label of an ingredient.
type Canonical struct {
	Key         string
	DisplayName string
}

type foldRule struct {
	contains string
	key      string
	display  string
}

// foldRules collapse synonym families onto one key. Order matters.
var foldRules = []foldRule{
	{contains: "pimiento", key: "pimiento", display: "Pimiento"},
	{contains: "huevo", key: "huevos", display: "Huevos"},
	{contains: "patatas fritas", key: "patatas", display: "Patatas"},
}

// Normalize trims, lowercases and strips diacritics. The result is only
// used for matching, never shown.
func Normalize(s string) string {
	return stripDiacritics(strings.ToLower(strings.TrimSpace(s)))
}

// Canonicalize maps a raw ingredient name to its key and display name.
func Canonicalize(raw string) Canonical {
	normalized := Normalize(raw)
	for _, rule := range foldRules {
		if strings.Contains(normalized, rule.contains) {
			return Canonical{Key: rule.key, DisplayName: rule.display}
		}
	}
	return Canonical{Key: normalized, DisplayName: Capitalize(strings.TrimSpace(raw))}
}

// Key is shorthand for Canonicalize(raw).Key.
func Key(raw string) string {
	return Canonicalize(raw).Key
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
