// Package categories holds the closed, build-time set of expense categories.
package categories

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/yelinaung/expense-ledger/internal/models"
)

// Registry is an ordered, immutable set of categories.
type Registry struct {
	entries []models.Category
	index   map[string]int
}

var defaultEntries = []models.Category{
	{Key: "groceries", Label: "Groceries"},
	{Key: "utilities", Label: "Utilities"},
	{Key: "transport", Label: "Transport"},
	{Key: "housing", Label: "Housing"},
	{Key: "health", Label: "Health"},
	{Key: "entertainment", Label: "Entertainment"},
	{Key: "dining", Label: "Dining Out"},
	{Key: "education", Label: "Education"},
	{Key: "other", Label: "Other"},
}

var defaultRegistry = New(defaultEntries)

// Default returns the registry compiled into the binary.
func Default() *Registry {
	return defaultRegistry
}

// New builds a registry from entries, keeping their order.
// Later duplicates of a key are ignored.
func New(entries []models.Category) *Registry {
	r := &Registry{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, ok := r.index[e.Key]; ok {
			continue
		}
		r.index[e.Key] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r
}

// All returns the categories in registry order.
func (r *Registry) All() []models.Category {
	return slices.Clone(r.entries)
}

// Keys returns the category keys in registry order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

// Contains reports whether key is a registered category. Matching is exact and case-sensitive.
func (r *Registry) Contains(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Label returns the display label for key, or key itself if it is not registered.
func (r *Registry) Label(key string) string {
	if i, ok := r.index[key]; ok {
		return r.entries[i].Label
	}
	return key
}

// BudgetKey normalizes a category key for budget lookups: the whole key is
// lower-cased, then only its first letter is upper-cased ("groceries" -> "Groceries").
// Multi-word keys keep later words lower-case.
func BudgetKey(key string) string {
	lower := strings.ToLower(key)
	first, size := utf8.DecodeRuneInString(lower)
	if first == utf8.RuneError {
		return lower
	}
	return string(unicode.ToUpper(first)) + lower[size:]
}
