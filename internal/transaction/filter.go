package transaction

import (
	"strings"
	"time"
)

// ListFilter narrows a listing. Nil fields match everything; date bounds are inclusive.
type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      *Type
	Category  *string
	Currency  *Currency
	Year      *int
	Month     *time.Month
}

// Match reports whether tx satisfies every set field of the filter.
func (f ListFilter) Match(tx *Transaction) bool {
	if f.StartDate != nil && tx.Date.Before(truncateDay(*f.StartDate)) {
		return false
	}

	if f.EndDate != nil && tx.Date.After(truncateDay(*f.EndDate)) {
		return false
	}

	if f.Type != nil && tx.Type != *f.Type {
		return false
	}

	if f.Category != nil && CategoryKey(tx.Category) != CategoryKey(*f.Category) {
		return false
	}

	if f.Currency != nil && tx.Currency != *f.Currency {
		return false
	}

	if f.Year != nil && tx.Date.Year() != *f.Year {
		return false
	}

	if f.Month != nil && tx.Date.Month() != *f.Month {
		return false
	}

	return true
}

// CategoryKey is the form categories are compared in: trimmed and lower-cased. SQL stores keep it
// in its own column so every backend folds case the same way.
func CategoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
