// Package report aggregates ledger entries into per-currency totals and the documents built from them.
package report

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// GroupBy selects the grouping dimension of a Summary.
type GroupBy string

const (
	GroupNone     GroupBy = "none"
	GroupCategory GroupBy = "category"
	GroupMonth    GroupBy = "month"
	GroupCurrency GroupBy = "currency"
)

// GroupAll is the group of every entry when grouping by GroupNone.
const GroupAll = "all"

const monthLayout = "2006-01"

// ParseGroupBy accepts the GroupBy names; an empty string means GroupNone.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GroupNone, nil
	case GroupNone, GroupCategory, GroupMonth, GroupCurrency:
		return g, nil
	}

	return "", fmt.Errorf("unknown grouping %q", s)
}

// Key identifies one bucket of a Summary. Amounts in different currencies never share a bucket.
type Key struct {
	Group    string
	Currency transaction.Currency
}

// Totals are sums in minor units.
type Totals struct {
	Income  int64
	Expense int64
	Net     int64
}

func (t *Totals) add(tx *transaction.Transaction) {
	switch tx.Type {
	case transaction.TypeIncome:
		t.Income += tx.Amount
	case transaction.TypeExpense:
		t.Expense += tx.Amount
	}

	t.Net = t.Income - t.Expense
}

// Entry is one bucket of a Summary.
type Entry struct {
	Key
	Totals
}

// Summary holds the totals of a set of transactions per Key.
type Summary struct {
	GroupBy GroupBy
	totals  map[Key]Totals
}

// Summarize totals seq by the given grouping. Grouping by currency, or not at all, yields an
// entry for every supported currency even if it has no transactions; category and month
// groupings only hold observed pairs. An unknown grouping is treated as GroupNone.
func Summarize(seq iter.Seq[*transaction.Transaction], by GroupBy) Summary {
	by, err := ParseGroupBy(string(by))
	if err != nil {
		by = GroupNone
	}

	s := Summary{GroupBy: by, totals: make(map[Key]Totals)}

	switch by {
	case GroupCurrency:
		for _, c := range transaction.Currencies {
			s.totals[Key{Group: string(c), Currency: c}] = Totals{}
		}
	case GroupNone:
		for _, c := range transaction.Currencies {
			s.totals[Key{Group: GroupAll, Currency: c}] = Totals{}
		}
	}

	for tx := range seq {
		k := Key{Group: group(tx, by), Currency: tx.Currency}

		t := s.totals[k]
		t.add(tx)
		s.totals[k] = t
	}

	return s
}

func group(tx *transaction.Transaction, by GroupBy) string {
	switch by {
	case GroupCategory:
		return tx.Category
	case GroupMonth:
		return tx.Date.Format(monthLayout)
	case GroupCurrency:
		return string(tx.Currency)
	}

	return GroupAll
}

// Get returns the totals of k.
func (s Summary) Get(k Key) (Totals, bool) {
	t, ok := s.totals[k]
	return t, ok
}

func (s Summary) Len() int {
	return len(s.totals)
}

// Entries returns every bucket sorted by group, then by currency in display order.
func (s Summary) Entries() []Entry {
	keys := slices.SortedFunc(maps.Keys(s.totals), compareKeys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Totals: s.totals[k]})
	}

	return entries
}

func compareKeys(a, b Key) int {
	if c := cmp.Compare(a.Group, b.Group); c != 0 {
		return c
	}

	return cmp.Compare(currencyRank(a.Currency), currencyRank(b.Currency))
}

func currencyRank(c transaction.Currency) int {
	if i := slices.Index(transaction.Currencies, c); i >= 0 {
		return i
	}

	return len(transaction.Currencies)
}

// CategoryAmount is the total of one category.
type CategoryAmount struct {
	Category string
	Amount   int64
}

// CategoryBreakdown totals the transactions of type typ in currency cur per category, largest first.
// Ties are broken by category name.
func CategoryBreakdown(seq iter.Seq[*transaction.Transaction], typ transaction.Type, cur transaction.Currency) []CategoryAmount {
	sums := make(map[string]int64)

	for tx := range seq {
		if tx.Type == typ && tx.Currency == cur {
			sums[tx.Category] += tx.Amount
		}
	}

	out := make([]CategoryAmount, 0, len(sums))
	for category, amount := range sums {
		out = append(out, CategoryAmount{Category: category, Amount: amount})
	}

	slices.SortFunc(out, func(a, b CategoryAmount) int {
		if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	return out
}
