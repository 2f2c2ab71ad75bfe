package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindExpense TransactionKind = "despesa"
	KindIncome  TransactionKind = "receita"
)

const (
	GoalActive GoalStatus = "ativa"
)

// Default qualifiers applied when a message carries no category/description.
const (
	DefaultExpenseCategory = "outros"
	DefaultIncomeSource    = "receita"
)

type (
	TransactionKind string

	GoalStatus string

	Money struct {
		Cents int64
	}

	// User is owned by the registration flow; the bot only reads it.
	User struct {
		ID    int64
		Name  string
		Phone string
	}

	// Transaction is one append-only ledger entry. Never mutated or deleted.
	Transaction struct {
		ID          int64
		UserID      int64
		Amount      Money
		Kind        TransactionKind
		Category    string
		Description string
		OccurredAt  time.Time
	}

	Goal struct {
		ID          int64
		UserID      int64
		Target      Money
		Description string
		Status      GoalStatus
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNoAmount      = errors.New("no amount found in message")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmptyCategory = errors.New("empty category")
)

func (k TransactionKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return errors.New("invalid transaction kind")
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.OccurredAt.IsZero() {
		return errors.New("transaction date cannot be zero")
	}
	return nil
}

func (g Goal) Validate() error {
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(g.Description) == "" {
		return errors.New("empty goal description")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o. The result may be negative (monthly balance).
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}
