// Package filter evaluates declarative predicates over a cached entry
// snapshot. It is pure: filtering never goes back to the store, which is
// what makes search-as-you-type instant.
package filter

import (
	"strings"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/types"
	"golang.org/x/text/cases"
)

// Filter narrows an entry list. Unset fields do not constrain the result,
// a Filter with every field unset is defined as "no filter" and returns
// the input unchanged.
type Filter struct {
	Description string           `json:"description" form:"description"` // Case-insensitive substring of the description
	Type        models.EntryType `json:"type" form:"type"`
	Category    models.Category  `json:"category" form:"category"`
	StartDate   types.Date       `json:"startDate" form:"startDate"` // Inclusive lower bound
	EndDate     types.Date       `json:"endDate" form:"endDate"`     // Inclusive upper bound
}

// Empty reports whether the filter does not constrain anything.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Description) == "" &&
		f.Type == "" &&
		f.Category == "" &&
		f.StartDate.IsZero() &&
		f.EndDate.IsZero()
}

// Apply returns the subsequence of entries matching the filter, in the
// order of the input. An empty filter short-circuits to the input itself.
func Apply(entries []models.BudgetEntry, f Filter) []models.BudgetEntry {
	if f.Empty() {
		return entries
	}

	fold := cases.Fold()
	description := fold.String(strings.TrimSpace(f.Description))

	matched := make([]models.BudgetEntry, 0, len(entries))
	for _, entry := range entries {
		if f.matches(entry, fold, description) {
			matched = append(matched, entry)
		}
	}

	return matched
}

// matches evaluates all predicates, AND-combined.
func (f Filter) matches(entry models.BudgetEntry, fold cases.Caser, description string) bool {
	if description != "" && !strings.Contains(fold.String(entry.Description), description) {
		return false
	}

	if f.Type != "" && entry.Type != f.Type {
		return false
	}

	if f.Category != "" && entry.Category != f.Category {
		return false
	}

	// Dates are ISO strings, lexicographic comparison is chronological
	// comparison
	if !f.StartDate.IsZero() && entry.Date.Before(f.StartDate) {
		return false
	}

	if !f.EndDate.IsZero() && entry.Date.After(f.EndDate) {
		return false
	}

	return true
}
