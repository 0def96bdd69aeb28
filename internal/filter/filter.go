// Package filter computes the visible part of a menu from a search query and a category.
package filter

import (
	"strings"

	"github.com/drstein77/littlelemon/internal/models"
)

// Apply returns the items matching state, keeping their relative order.
// It does not modify items and always returns a fresh slice.
func Apply(items []models.MenuItem, state models.FilterState) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if Matches(item, state) {
			out = append(out, item)
		}
	}
	return out
}

// Matches reports whether item passes both the text and the category condition.
func Matches(item models.MenuItem, state models.FilterState) bool {
	return matchesQuery(item, strings.ToLower(state.Query)) && matchesCategory(item, state.Category)
}

// matchesQuery expects query already lowercased.
func matchesQuery(item models.MenuItem, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.Name), query) {
		return true
	}
	return item.Description != "" && strings.Contains(strings.ToLower(item.Description), query)
}

func matchesCategory(item models.MenuItem, category string) bool {
	return category == "" || strings.EqualFold(category, item.Category)
}

// ToggleCategory returns the category selected after choosing category while current is selected.
// Choosing the selected category again clears the selection.
func ToggleCategory(current, category string) string {
	if category == "" || strings.EqualFold(current, category) {
		return ""
	}
	return category
}

// Categories lists the distinct categories of items in first-seen order, compared case-insensitively.
func Categories(items []models.MenuItem) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0)
	for _, item := range items {
		key := strings.ToLower(item.Category)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
