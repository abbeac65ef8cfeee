// Package filter reads ledger filters from query parameters.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// Parse builds a ListFilter from start_date, end_date, type, category, currency, year and month.
// Absent parameters are not filtered on; malformed ones are an error.
func Parse(q url.Values) (transaction.ListFilter, error) {
	var f transaction.ListFilter

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &f.StartDate},
		{"end_date", &f.EndDate},
	} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}

		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return f, fmt.Errorf("%s: %q is not YYYY-MM-DD", p.name, s)
		}

		*p.dst = new(d)
	}

	if s := q.Get("type"); s != "" {
		t, ok := transaction.ParseType(s)
		if !ok {
			return f, fmt.Errorf("type: %q is not income or expense", s)
		}

		f.Type = new(t)
	}

	if s := strings.TrimSpace(q.Get("category")); s != "" {
		f.Category = new(s)
	}

	if s := q.Get("currency"); s != "" {
		c, ok := transaction.ParseCurrency(s)
		if !ok {
			return f, fmt.Errorf("currency: %q is not supported", s)
		}

		f.Currency = new(c)
	}

	if s := q.Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 || y > 9999 {
			return f, fmt.Errorf("year: %q is not a year", s)
		}

		f.Year = new(y)
	}

	if s := q.Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			return f, fmt.Errorf("month: %q is not 1-12", s)
		}

		f.Month = new(time.Month(m))
	}

	return f, nil
}
