// Package money handles FCFA amounts. XAF carries no minor unit, so amounts
// are whole francs stored as int64; percentage fees go through decimal
// arithmetic to avoid float drift.
package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is an FCFA amount in whole francs.
type Amount int64

var printer = message.NewPrinter(language.French)

var hundred = decimal.NewFromInt(100)

// Format renders the amount with French digit grouping, e.g. "15 000 FCFA".
func (a Amount) Format() string {
	return printer.Sprintf("%d FCFA", int64(a))
}

// ParsePercent parses a percentage such as "1" or "2.5".
func ParsePercent(value string) (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing percentage %q: %w", value, err)
	}
	if pct.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("percentage %q cannot be negative", value)
	}
	return pct, nil
}

// Fee computes the fee for the amount at the given percentage, rounded to the
// nearest franc.
func Fee(amount Amount, percent decimal.Decimal) Amount {
	fee := decimal.NewFromInt(int64(amount)).Mul(percent).Div(hundred)
	return Amount(fee.Round(0).IntPart())
}

var phoneDigits = regexp.MustCompile(`\D`)

// FormatPhone renders a raw phone number as "+235 XX XX XX" when it carries
// the nine digits the wallet API uses, or returns it untouched otherwise.
func FormatPhone(phone string) string {
	if phone == "" {
		return ""
	}
	cleaned := phoneDigits.ReplaceAllString(phone, "")
	if len(cleaned) != 9 {
		return phone
	}
	return fmt.Sprintf("+%s %s %s %s", cleaned[0:3], cleaned[3:5], cleaned[5:7], cleaned[7:9])
}
