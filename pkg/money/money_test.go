package money

import (
	"strings"
	"testing"
	"unicode"

	"github.com/shopspring/decimal"
)

func TestFormatGroupsDigits(t *testing.T) {
	t.Parallel()

	got := Amount(1500000).Format()
	if !strings.HasSuffix(got, "FCFA") {
		t.Fatalf("expected FCFA suffix, got %q", got)
	}
	if digitsOf(got) != "1500000" {
		t.Fatalf("digits mangled in %q", got)
	}
	if got == "1500000 FCFA" {
		t.Fatalf("expected grouped digits, got %q", got)
	}
}

func TestFeeOnePercent(t *testing.T) {
	t.Parallel()

	pct, err := ParsePercent("1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fee := Fee(Amount(10000), pct); fee != 100 {
		t.Fatalf("expected 100 FCFA fee, got %d", fee)
	}
	if fee := Fee(Amount(0), pct); fee != 0 {
		t.Fatalf("expected zero fee, got %d", fee)
	}
	// 1% of 155 is 1.55, rounds to 2
	if fee := Fee(Amount(155), pct); fee != 2 {
		t.Fatalf("expected rounded fee of 2, got %d", fee)
	}
}

func TestParsePercentRejectsNegative(t *testing.T) {
	t.Parallel()

	if _, err := ParsePercent("-1"); err == nil {
		t.Fatal("expected negative percentage to be rejected")
	}
	if _, err := ParsePercent("abc"); err == nil {
		t.Fatal("expected malformed percentage to be rejected")
	}
	if pct, err := ParsePercent(" 2.5 "); err != nil || !pct.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("expected 2.5, got %v (%v)", pct, err)
	}
}

func TestFormatPhone(t *testing.T) {
	t.Parallel()

	if got := FormatPhone("235661234"); got != "+235 66 12 34" {
		t.Fatalf("unexpected formatting %q", got)
	}
	if got := FormatPhone("+235 66 12 34"); got != "+235 66 12 34" {
		t.Fatalf("formatting should be idempotent, got %q", got)
	}
	if got := FormatPhone("12345"); got != "12345" {
		t.Fatalf("short numbers pass through, got %q", got)
	}
	if got := FormatPhone(""); got != "" {
		t.Fatalf("empty input stays empty, got %q", got)
	}
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
