// Package bot wires one inbound message through classification, extraction,
// the ledger operation and rendering, producing exactly one outbound text.
//
// Processing is stateless and request-scoped: there is no conversation
// memory and no sequencing between concurrent messages, including messages
// from the same user.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"finbot/internal/cache"
	"finbot/internal/core"
	"finbot/internal/intent"
	"finbot/internal/ledger"
	"finbot/internal/reply"
)

// UserFinder resolves a registered user by phone number. Returns
// core.ErrUserNotFound for unregistered numbers.
type UserFinder interface {
	FindUserByPhone(ctx context.Context, phone string) (*core.User, error)
}

type Dispatcher struct {
	users     UserFinder
	ledger    *ledger.Service
	signupURL string
	userCache *cache.LRUCache[*core.User]
	now       func() time.Time
}

func NewDispatcher(users UserFinder, svc *ledger.Service, signupURL string) *Dispatcher {
	return &Dispatcher{
		users:     users,
		ledger:    svc,
		signupURL: signupURL,
		userCache: cache.NewLRUCache[*core.User](500, 5*time.Minute),
		now:       time.Now,
	}
}

// Handle processes one inbound message and returns the outbound reply text.
// It never returns an error: every failure path maps to a polite reply, and
// the cause is logged here for operator visibility.
func (d *Dispatcher) Handle(ctx context.Context, phone, text string) string {
	msg := strings.ToLower(strings.TrimSpace(text))

	user, err := d.resolveUser(ctx, phone)
	if err != nil {
		if !errors.Is(err, core.ErrUserNotFound) {
			slog.ErrorContext(ctx, "User lookup failed", "phone", phone, "error", err)
		}
		return reply.Onboarding(d.signupURL)
	}

	it := intent.Classify(msg)
	slog.InfoContext(ctx, "Message classified",
		"user_id", user.ID,
		"intent", it.String())

	now := d.now()
	period := core.CurrentMonth(now)

	switch it {
	case intent.Expense:
		amount, err := intent.Amount(msg)
		if err != nil {
			return reply.AskExpenseAmount()
		}
		tx, err := d.ledger.RecordExpense(ctx, user, amount, intent.ExpenseCategory(msg), msg, now)
		if err != nil {
			slog.ErrorContext(ctx, "Record expense failed", "user_id", user.ID, "error", err)
			return reply.ExpenseSaveFailed()
		}
		return reply.ExpenseSaved(tx.Amount, tx.Category, tx.OccurredAt)

	case intent.Income:
		amount, err := intent.Amount(msg)
		if err != nil {
			return reply.AskIncomeAmount()
		}
		tx, err := d.ledger.RecordIncome(ctx, user, amount, msg, now)
		if err != nil {
			slog.ErrorContext(ctx, "Record income failed", "user_id", user.ID, "error", err)
			return reply.IncomeSaveFailed()
		}
		return reply.IncomeSaved(tx.Amount, intent.IncomeSource(msg), tx.OccurredAt)

	case intent.Balance:
		sum, err := d.ledger.Balance(ctx, user.ID, period)
		if err != nil {
			slog.ErrorContext(ctx, "Balance query failed", "user_id", user.ID, "error", err)
			return reply.BalanceFailed()
		}
		return reply.BalanceSummary(sum, now)

	case intent.Report:
		rep, err := d.ledger.MonthlyReport(ctx, user.ID, period)
		if err != nil {
			slog.ErrorContext(ctx, "Report query failed", "user_id", user.ID, "error", err)
			return reply.ReportFailed()
		}
		return reply.MonthlyReport(rep, now)

	case intent.Goal:
		amount, err := intent.Amount(msg)
		if err != nil {
			return reply.AskGoalAmount()
		}
		g, err := d.ledger.SetGoal(ctx, user, amount, msg, now)
		if err != nil {
			slog.ErrorContext(ctx, "Set goal failed", "user_id", user.ID, "error", err)
			return reply.GoalSaveFailed()
		}
		return reply.GoalSet(g.Target, now)

	case intent.CategorySpend:
		category, _ := intent.SpendCategory(msg)
		total, err := d.ledger.CategorySpend(ctx, user.ID, category, period)
		if err != nil {
			slog.ErrorContext(ctx, "Category spend query failed", "user_id", user.ID, "error", err)
			return reply.CategorySpendFailed()
		}
		return reply.CategorySpend(category, total, now)

	case intent.Help:
		return reply.Help()

	default:
		return reply.Fallback(user.Name)
	}
}

func (d *Dispatcher) resolveUser(ctx context.Context, phone string) (*core.User, error) {
	if u, ok := d.userCache.Get(phone); ok {
		return u, nil
	}
	u, err := d.users.FindUserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	d.userCache.Set(phone, u)
	return u, nil
}
