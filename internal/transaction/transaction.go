package transaction

import (
	"strings"
	"time"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// ParseType normalizes s into a Type. It reports false for anything but income or expense.
func ParseType(s string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, true
	case TypeExpense:
		return TypeExpense, true
	}

	return "", false
}

// Currency is an ISO 4217 code from the supported set.
type Currency string

const (
	CurrencyPKR Currency = "PKR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// Currencies is the supported set, in display order.
var Currencies = []Currency{CurrencyPKR, CurrencyUSD, CurrencyEUR, CurrencyGBP}

// ParseCurrency normalizes s into a supported Currency.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Currencies {
		if c == known {
			return c, true
		}
	}

	return "", false
}

// Transaction is a validated ledger entry. It is never mutated once appended.
type Transaction struct {
	ID       int64
	Date     time.Time
	Type     Type
	Amount   int64 // Amount in minor units (cents)
	Currency Currency
	Category string
	Note     string
}

// Signed returns the amount with expenses negated.
func (t *Transaction) Signed() int64 {
	if t.Type == TypeExpense {
		return -t.Amount
	}

	return t.Amount
}
