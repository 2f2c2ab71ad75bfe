package intent

import (
	"regexp"
	"strings"

	"finbot/internal/core"
)

// Extraction grammar. Each pattern maps to exactly one field so the rules
// can be unit-tested in isolation from the classifier.
var (
	// amountPattern matches the first numeric token: an integer part with
	// an optional two-digit fraction separated by ',' or '.'.
	amountPattern = regexp.MustCompile(`(\d+(?:[.,]\d{2})?)`)

	// expenseQualifierPattern captures the category following the first
	// "em"/"com"/"de" ("gastei 50 em almoço" -> "almoço").
	expenseQualifierPattern = regexp.MustCompile(`(?:em|com|de)\s+(.+)$`)

	// incomeQualifierPattern captures the income source following
	// "de"/"meu"/"minha" ("recebi meu salário" -> "salário").
	incomeQualifierPattern = regexp.MustCompile(`(?:de|meu|minha)\s+(.+)$`)
)

// Amount returns the first monetary value found in the message, left to
// right. Multiple numeric tokens are not disambiguated: the first one wins.
// A message with no parsable amount yields core.ErrNoAmount, never a panic
// or a malformed-number error.
func Amount(msg string) (core.Money, error) {
	m := amountPattern.FindStringSubmatch(msg)
	if m == nil {
		return core.Money{}, core.ErrNoAmount
	}
	cents, err := core.ParseDecimalToCents(m[1])
	if err != nil {
		return core.Money{}, core.ErrNoAmount
	}
	return core.Money{Cents: cents}, nil
}

// ExpenseCategory returns the category qualifier of an expense message, or
// the default category when none is present.
func ExpenseCategory(msg string) string {
	if m := expenseQualifierPattern.FindStringSubmatch(msg); m != nil {
		return strings.TrimSpace(m[1])
	}
	return core.DefaultExpenseCategory
}

// IncomeSource returns the description qualifier of an income message, or
// the default source when none is present.
func IncomeSource(msg string) string {
	if m := incomeQualifierPattern.FindStringSubmatch(msg); m != nil {
		return strings.TrimSpace(m[1])
	}
	return core.DefaultIncomeSource
}

// SpendCategory returns the category asked about in a category-spend
// question ("quanto gastei com mercado" -> "mercado", true).
func SpendCategory(msg string) (string, bool) {
	if m := categorySpendPattern.FindStringSubmatch(msg); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}
