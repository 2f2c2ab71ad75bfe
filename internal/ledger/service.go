// Package ledger implements the financial operations the bot executes per
// classified intent. All writes are append-only; nothing in this package
// updates or deletes a ledger row.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finbot/internal/core"
)

// TransactionFilter narrows a ledger query. Zero values mean "no filter"
// except the period, which is always applied.
type TransactionFilter struct {
	Kind         core.TransactionKind
	CategoryLike string // case-insensitive substring match
	Period       core.Period
	NewestFirst  bool
}

// Store is the durable ledger collaborator. Implemented by storage.Repository.
type Store interface {
	InsertTransaction(ctx context.Context, t core.Transaction) (int64, error)
	QueryTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error)
	InsertGoal(ctx context.Context, g core.Goal) (int64, error)
}

// BalanceSummary is the result of a balance query. All values are zero for
// a month with no transactions; that is success, not an error.
type BalanceSummary struct {
	Income  core.Money
	Expense core.Money
	Balance core.Money
}

// CategoryAmount is one row of the per-category expense breakdown.
type CategoryAmount struct {
	Name   string
	Amount core.Money
}

// ReportSummary aggregates a month for the report reply. ByCategory is
// ordered by first appearance in the newest-first transaction list so the
// rendered report is deterministic.
type ReportSummary struct {
	Income     core.Money
	Expense    core.Money
	ByCategory []CategoryAmount
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// RecordExpense appends an expense transaction dated at. The raw lowercased
// message is kept as the description for audit purposes.
func (s *Service) RecordExpense(ctx context.Context, user *core.User, amount core.Money, category, rawText string, at time.Time) (core.Transaction, error) {
	return s.record(ctx, user, core.Transaction{
		UserID:      user.ID,
		Amount:      amount,
		Kind:        core.KindExpense,
		Category:    category,
		Description: rawText,
		OccurredAt:  at,
	})
}

// RecordIncome appends an income transaction dated at. The category is
// fixed; the qualifier extracted from the message becomes the description.
func (s *Service) RecordIncome(ctx context.Context, user *core.User, amount core.Money, rawText string, at time.Time) (core.Transaction, error) {
	return s.record(ctx, user, core.Transaction{
		UserID:      user.ID,
		Amount:      amount,
		Kind:        core.KindIncome,
		Category:    core.DefaultIncomeSource,
		Description: rawText,
		OccurredAt:  at,
	})
}

func (s *Service) record(ctx context.Context, user *core.User, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	id, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction recorded",
		"id", id,
		"user_id", user.ID,
		"kind", string(t.Kind),
		"category", t.Category,
		"amount_cents", t.Amount.Cents)

	return t, nil
}

// Balance sums income and expense for the user within the period. An empty
// month returns all zeroes.
func (s *Service) Balance(ctx context.Context, userID int64, period core.Period) (BalanceSummary, error) {
	txs, err := s.store.QueryTransactions(ctx, userID, TransactionFilter{Period: period})
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("query transactions: %w", err)
	}

	var sum BalanceSummary
	for _, t := range txs {
		switch t.Kind {
		case core.KindIncome:
			sum.Income = sum.Income.Add(t.Amount)
		case core.KindExpense:
			sum.Expense = sum.Expense.Add(t.Amount)
		}
	}
	sum.Balance = sum.Income.Sub(sum.Expense)
	return sum, nil
}

// MonthlyReport computes the totals plus the expense-by-category breakdown
// for the period. The breakdown is empty when the month has no expenses.
func (s *Service) MonthlyReport(ctx context.Context, userID int64, period core.Period) (ReportSummary, error) {
	txs, err := s.store.QueryTransactions(ctx, userID, TransactionFilter{Period: period, NewestFirst: true})
	if err != nil {
		return ReportSummary{}, fmt.Errorf("query transactions: %w", err)
	}

	var rep ReportSummary
	index := make(map[string]int)
	for _, t := range txs {
		switch t.Kind {
		case core.KindIncome:
			rep.Income = rep.Income.Add(t.Amount)
		case core.KindExpense:
			rep.Expense = rep.Expense.Add(t.Amount)
			if i, ok := index[t.Category]; ok {
				rep.ByCategory[i].Amount = rep.ByCategory[i].Amount.Add(t.Amount)
			} else {
				index[t.Category] = len(rep.ByCategory)
				rep.ByCategory = append(rep.ByCategory, CategoryAmount{Name: t.Category, Amount: t.Amount})
			}
		}
	}
	return rep, nil
}

// SetGoal appends a savings goal. Duplicate or overlapping goals are
// allowed; there is no supersede logic.
func (s *Service) SetGoal(ctx context.Context, user *core.User, target core.Money, rawText string, at time.Time) (core.Goal, error) {
	g := core.Goal{
		UserID:      user.ID,
		Target:      target,
		Description: rawText,
		Status:      core.GoalActive,
		CreatedAt:   at,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("validate goal: %w", err)
	}

	id, err := s.store.InsertGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	g.ID = id

	slog.InfoContext(ctx, "Goal recorded",
		"id", id,
		"user_id", user.ID,
		"target_cents", g.Target.Cents)

	return g, nil
}

// CategorySpend totals the period's expenses whose category contains the
// given text, case-insensitively. Zero matches is a zero total, not an
// error.
func (s *Service) CategorySpend(ctx context.Context, userID int64, category string, period core.Period) (core.Money, error) {
	txs, err := s.store.QueryTransactions(ctx, userID, TransactionFilter{
		Kind:         core.KindExpense,
		CategoryLike: category,
		Period:       period,
	})
	if err != nil {
		return core.Money{}, fmt.Errorf("query transactions: %w", err)
	}

	var total core.Money
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total, nil
}
