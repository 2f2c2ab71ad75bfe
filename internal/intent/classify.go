// Package intent classifies inbound messages and extracts monetary
// parameters from their free text.
//
// Classification is a pure function over the lowercased message: a fixed,
// priority-ordered list of (predicate, intent) rules evaluated top to
// bottom, first match wins. The order is load-bearing because keyword sets
// overlap ("quero economizar 500, gastei demais" must register an expense,
// not a goal).
package intent

import (
	"regexp"
	"strings"
)

type Intent int

const (
	// Unknown means no rule matched; the dispatcher replies with the
	// command list.
	Unknown Intent = iota
	Expense
	Income
	Balance
	Report
	Goal
	CategorySpend
	Help
)

func (i Intent) String() string {
	switch i {
	case Expense:
		return "expense"
	case Income:
		return "income"
	case Balance:
		return "balance"
	case Report:
		return "report"
	case Goal:
		return "goal"
	case CategorySpend:
		return "category_spend"
	case Help:
		return "help"
	default:
		return "unknown"
	}
}

// categorySpendPattern matches "quanto gastei com <category>" and friends.
// Note that any text matching it also contains "gastei" and therefore hits
// the expense rule first; the rule is kept in the table at its documented
// priority regardless.
var categorySpendPattern = regexp.MustCompile(`quanto gastei (?:com|em|de)\s+(.+)`)

type rule struct {
	match  func(msg string) bool
	intent Intent
}

func containsAny(words ...string) func(string) bool {
	return func(msg string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}
}

// rules is evaluated top to bottom; first match wins.
var rules = []rule{
	{containsAny("gastei", "gasto"), Expense},
	{containsAny("recebi", "receita", "salário", "salario"), Income},
	{containsAny("saldo", "quanto tenho"), Balance},
	{containsAny("relatório", "relatorio", "resumo"), Report},
	{func(msg string) bool {
		return strings.Contains(msg, "meta") &&
			(strings.Contains(msg, "economizar") || strings.Contains(msg, "poupar"))
	}, Goal},
	{categorySpendPattern.MatchString, CategorySpend},
	{containsAny("dica", "ajuda", "conselho"), Help},
}

// Classify returns the intent of a lowercased message. Exactly one intent
// (possibly Unknown) is always produced.
func Classify(msg string) Intent {
	for _, r := range rules {
		if r.match(msg) {
			return r.intent
		}
	}
	return Unknown
}
