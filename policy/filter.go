package policy

import (
	"strings"

	"civicconnect-be/models"
)

// FilterAll disables the status or category predicate. Submission rejects
// it as a category name so every category stays selectable.
const FilterAll = "all"

// Filter narrows an already scoped list. Empty Status and Category behave
// like FilterAll; an empty Term matches everything.
type Filter struct {
	Term     string
	Status   string
	Category string
}

// Matches reports whether issue passes all three predicates.
func (f Filter) Matches(issue *models.Issue) bool {
	if f.Status != "" && f.Status != FilterAll && string(issue.Status) != f.Status {
		return false
	}
	if f.Category != "" && f.Category != FilterAll && issue.Category != f.Category {
		return false
	}
	if f.Term == "" {
		return true
	}
	term := strings.ToLower(f.Term)
	return strings.Contains(strings.ToLower(issue.Title), term) ||
		strings.Contains(strings.ToLower(issue.Description), term) ||
		strings.Contains(strings.ToLower(issue.Location), term)
}

// Apply returns the issues matching f in their input order.
func Apply(issues []models.Issue, f Filter) []models.Issue {
	out := make([]models.Issue, 0, len(issues))
	for i := range issues {
		if f.Matches(&issues[i]) {
			out = append(out, issues[i])
		}
	}
	return out
}
