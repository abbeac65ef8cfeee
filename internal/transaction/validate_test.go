package transaction_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

func validCandidate() transaction.Candidate {
	return transaction.Candidate{
		Date:     "2024-03-15",
		Type:     "expense",
		Amount:   "12.50",
		Currency: "USD",
		Category: " Groceries ",
		Note:     "weekly shop",
	}
}

func TestValidate_Valid(t *testing.T) {
	tx, err := transaction.Validate(validCandidate())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, transaction.TypeExpense, tx.Type)
	assert.Equal(t, int64(1250), tx.Amount)
	assert.Equal(t, transaction.CurrencyUSD, tx.Currency)
	assert.Equal(t, "Groceries", tx.Category)
	assert.Equal(t, "weekly shop", tx.Note)
	assert.Zero(t, tx.ID)
}

func TestValidate_FutureDateAllowed(t *testing.T) {
	c := validCandidate()
	c.Date = time.Now().AddDate(5, 0, 0).Format(time.DateOnly)

	_, err := transaction.Validate(c)
	assert.NoError(t, err)
}

func TestValidate_Failures(t *testing.T) {
	type testCase struct {
		name      string
		mutate    func(c *transaction.Candidate)
		wantField string
		wantKind  transaction.Kind
	}

	tests := []testCase{
		{
			name:      "MissingDate",
			mutate:    func(c *transaction.Candidate) { c.Date = "" },
			wantField: transaction.FieldDate,
			wantKind:  transaction.KindMissingField,
		},
		{
			name:      "MissingCurrencyWhitespace",
			mutate:    func(c *transaction.Candidate) { c.Currency = "   " },
			wantField: transaction.FieldCurrency,
			wantKind:  transaction.KindMissingField,
		},
		{
			name:      "MissingCategory",
			mutate:    func(c *transaction.Candidate) { c.Category = "" },
			wantField: transaction.FieldCategory,
			wantKind:  transaction.KindMissingField,
		},
		{
			name:      "InvalidDate",
			mutate:    func(c *transaction.Candidate) { c.Date = "2024-02-30" },
			wantField: transaction.FieldDate,
			wantKind:  transaction.KindInvalidDate,
		},
		{
			name:      "InvalidType",
			mutate:    func(c *transaction.Candidate) { c.Type = "transfer" },
			wantField: transaction.FieldType,
			wantKind:  transaction.KindInvalidType,
		},
		{
			name:      "AmountNotNumber",
			mutate:    func(c *transaction.Candidate) { c.Amount = "ten" },
			wantField: transaction.FieldAmount,
			wantKind:  transaction.KindInvalidAmount,
		},
		{
			name:      "AmountZero",
			mutate:    func(c *transaction.Candidate) { c.Amount = "0" },
			wantField: transaction.FieldAmount,
			wantKind:  transaction.KindInvalidAmount,
		},
		{
			name:      "AmountNegative",
			mutate:    func(c *transaction.Candidate) { c.Amount = "-5" },
			wantField: transaction.FieldAmount,
			wantKind:  transaction.KindInvalidAmount,
		},
		{
			name:      "AmountRoundsToZero",
			mutate:    func(c *transaction.Candidate) { c.Amount = "0.004" },
			wantField: transaction.FieldAmount,
			wantKind:  transaction.KindInvalidAmount,
		},
		{
			name:      "UnsupportedCurrency",
			mutate:    func(c *transaction.Candidate) { c.Currency = "JPY" },
			wantField: transaction.FieldCurrency,
			wantKind:  transaction.KindUnsupportedCurrency,
		},
		{
			name:      "BlankCategory",
			mutate:    func(c *transaction.Candidate) { c.Category = "   " },
			wantField: transaction.FieldCategory,
			wantKind:  transaction.KindEmptyCategory,
		},
		{
			name: "FirstFailureWins",
			mutate: func(c *transaction.Candidate) {
				c.Date = "not-a-date"
				c.Amount = "-1"
				c.Currency = "XXX"
			},
			wantField: transaction.FieldDate,
			wantKind:  transaction.KindInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			tt.mutate(&c)

			tx, err := transaction.Validate(c)
			require.Error(t, err)
			assert.Nil(t, tx)

			var vErr *transaction.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.Equal(t, tt.wantKind, vErr.Kind)
			assert.ErrorIs(t, err, tt.wantKind)
		})
	}
}

func TestValidate_AmountsAtOrBelowZeroAlwaysInvalid(t *testing.T) {
	for _, amount := range []string{"0", "0.00", "-0.01", "-100", "-1e3", "0,00"} {
		c := validCandidate()
		c.Amount = amount

		_, err := transaction.Validate(c)
		assert.ErrorIs(t, err, transaction.KindInvalidAmount, "amount %q", amount)
	}
}

func TestValidate_CurrenciesOutsideSetAlwaysUnsupported(t *testing.T) {
	for _, cur := range []string{"JPY", "usd$", "EURO", "PK", "BTC"} {
		c := validCandidate()
		c.Currency = cur

		_, err := transaction.Validate(c)
		assert.ErrorIs(t, err, transaction.KindUnsupportedCurrency, "currency %q", cur)
	}
}

func TestValidate_NormalizesCase(t *testing.T) {
	c := validCandidate()
	c.Type = "INCOME"
	c.Currency = "gbp"

	tx, err := transaction.Validate(c)
	require.NoError(t, err)
	assert.Equal(t, transaction.TypeIncome, tx.Type)
	assert.Equal(t, transaction.CurrencyGBP, tx.Currency)
}

func TestParseDate_Layouts(t *testing.T) {
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, s := range []string{"2024-01-02", "2024/01/02", "02/01/2024", "2024-01-02 00:00:00", "2024-01-02T10:30:00Z"} {
		got, ok := transaction.ParseDate(s)
		require.True(t, ok, s)
		assert.Equal(t, want, got, s)
	}
}

func TestParseAmount(t *testing.T) {
	type testCase struct {
		in      string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{in: "12.34", want: 1234},
		{in: "12,34", want: 1234},
		{in: "1,234.56", want: 123456},
		{in: "50000", want: 5000000},
		{in: "12.345", want: 1235},
		{in: "12.344", want: 1234},
		{in: "12,000", want: 1200000},
		{in: "1,234", want: 123400},
		{in: "1,234,567.89", want: 123456789},
		{in: "12,5", want: 1250},
		{in: "-1,234", want: -123400},
		{in: "1.234,56", wantErr: true},
		{in: "12,3456", wantErr: true},
		{in: "1,23,456", wantErr: true},
		{in: "12,34.5", wantErr: true},
		{in: "1.234.567", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := transaction.ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_AmbiguousSeparatorsRejected(t *testing.T) {
	for _, amount := range []string{"1.234,56", "12,3456", "1,2,3"} {
		c := validCandidate()
		c.Amount = amount

		_, err := transaction.Validate(c)
		assert.ErrorIs(t, err, transaction.KindInvalidAmount, "amount %q", amount)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.50", transaction.FormatAmount(1250))
	assert.Equal(t, "-0.05", transaction.FormatAmount(-5))
	assert.Equal(t, "50000.00", transaction.FormatAmount(5000000))
}
