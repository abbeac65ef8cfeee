package transaction

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

var (
	// thousandsComma is "1,234" or "1,234,567.89": commas only between groups of three digits.
	thousandsComma = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
	// decimalComma is "12,5" or "12,50": a single comma followed by one or two digits.
	decimalComma = regexp.MustCompile(`^[+-]?\d*,\d{1,2}$`)
)

var errAmbiguousSeparators = errors.New("ambiguous digit separators")

// ParseAmount parses a decimal string into minor units, rounding half-up to two decimals.
// A comma is either a thousands separator ("1,234.56", "12,000") or a decimal comma with one or
// two digits after it ("12,50"). Anything else containing a comma is rejected.
func ParseAmount(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if clean == "" {
		return 0, errors.New("empty amount")
	}

	switch {
	case !strings.Contains(clean, ","):
	case thousandsComma.MatchString(clean):
		clean = strings.ReplaceAll(clean, ",", "")
	case decimalComma.MatchString(clean):
		clean = strings.Replace(clean, ",", ".", 1)
	default:
		return 0, errAmbiguousSeparators
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	cents := d.Mul(hundred).Round(0)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(1<<53)) {
		return 0, errors.New("amount out of range")
	}

	return cents.IntPart(), nil
}

// FormatAmount formats minor units as a plain two-decimal string.
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
