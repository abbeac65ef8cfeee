package transaction

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies why a candidate or an import was refused. Kind implements error so a
// ValidationError can be matched with errors.Is(err, transaction.KindInvalidAmount).
type Kind string

const (
	KindMissingField        Kind = "missing_field"
	KindInvalidDate         Kind = "invalid_date"
	KindInvalidType         Kind = "invalid_type"
	KindInvalidAmount       Kind = "invalid_amount"
	KindUnsupportedCurrency Kind = "unsupported_currency"
	KindEmptyCategory       Kind = "empty_category"
	KindSchemaMismatch      Kind = "schema_mismatch"
	KindFileUnreadable      Kind = "file_unreadable"
)

func (k Kind) Error() string { return strings.ReplaceAll(string(k), "_", " ") }

// Field names as they appear in the import schema.
const (
	FieldDate     = "date"
	FieldType     = "type"
	FieldAmount   = "amount"
	FieldCurrency = "currency"
	FieldCategory = "category"
	FieldNote     = "note"
)

// ValidationError names the first field of a candidate that failed validation.
type ValidationError struct {
	Field  string
	Kind   Kind
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Candidate holds the raw field values of a transaction, as typed into a form or read from a file row.
type Candidate struct {
	Date     string
	Type     string
	Amount   string
	Currency string
	Category string
	Note     string
}

// dateLayouts are tried in order. Spreadsheets often export dates with a midnight time component.
var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02/01/2006",
	time.DateTime,
	"2006-01-02T15:04:05Z07:00",
}

// Validate checks a candidate and builds the Transaction it describes. The error, if any,
// is always a *ValidationError for the first failing check. The returned transaction has no ID yet.
func Validate(c Candidate) (*Transaction, error) {
	if err := checkPresent(c); err != nil {
		return nil, err
	}

	date, ok := ParseDate(c.Date)
	if !ok {
		return nil, invalid(FieldDate, KindInvalidDate, "%q is not a calendar date (YYYY-MM-DD)", c.Date)
	}

	txType, ok := ParseType(c.Type)
	if !ok {
		return nil, invalid(FieldType, KindInvalidType, "%q is not income or expense", c.Type)
	}

	amount, err := ParseAmount(c.Amount)
	if err != nil {
		return nil, invalid(FieldAmount, KindInvalidAmount, "%q is not a number: %v", c.Amount, err)
	}

	if amount <= 0 {
		return nil, invalid(FieldAmount, KindInvalidAmount, "amount must be greater than 0, got %s", c.Amount)
	}

	currency, ok := ParseCurrency(c.Currency)
	if !ok {
		return nil, invalid(FieldCurrency, KindUnsupportedCurrency, "%q is not one of PKR, USD, EUR, GBP", c.Currency)
	}

	category := strings.TrimSpace(c.Category)
	if category == "" {
		return nil, invalid(FieldCategory, KindEmptyCategory, "category is blank")
	}

	return &Transaction{
		Date:     date,
		Type:     txType,
		Amount:   amount,
		Currency: currency,
		Category: category,
		Note:     strings.TrimSpace(c.Note),
	}, nil
}

// checkPresent reports the first required field that was not supplied. A category made only of
// whitespace counts as supplied; it is rejected later as blank.
func checkPresent(c Candidate) error {
	required := []struct {
		field string
		value string
	}{
		{FieldDate, strings.TrimSpace(c.Date)},
		{FieldType, strings.TrimSpace(c.Type)},
		{FieldAmount, strings.TrimSpace(c.Amount)},
		{FieldCurrency, strings.TrimSpace(c.Currency)},
		{FieldCategory, c.Category},
	}

	for _, r := range required {
		if r.value == "" {
			return invalid(r.field, KindMissingField, "%s is required", r.field)
		}
	}

	return nil
}

// ParseDate parses s as a calendar date and truncates it to UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}

		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

func invalid(field string, kind Kind, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
