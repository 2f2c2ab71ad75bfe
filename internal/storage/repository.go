// Package storage implements the durable collaborators over SQLite: the
// user lookup, the append-only ledger, the goals table and the outbox of
// replies waiting for delivery.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finbot/internal/core"
	"finbot/internal/ledger"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so lexicographic comparison in SQL matches
// chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Outbox message states.
const (
	OutboundPending = "pending"
	OutboundSent    = "sent"
	OutboundError   = "error"
)

// OutboundMessage is one reply persisted for asynchronous delivery.
type OutboundMessage struct {
	ID        int64
	Recipient string
	Body      string
	Status    string
	Attempts  int64
	CreatedAt time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FindUserByPhone implements bot.UserFinder. Unregistered numbers map to
// core.ErrUserNotFound, which is a normal path, not a store failure.
func (r *Repository) FindUserByPhone(ctx context.Context, phone string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, phone FROM users WHERE phone = ?`, normalizePhone(phone))

	var u core.User
	if err := row.Scan(&u.ID, &u.Name, &u.Phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by phone: %w", err)
	}
	return &u, nil
}

// InsertTransaction implements ledger.Store.
func (r *Repository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount_cents, kind, category, description, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Amount.Cents, string(t.Kind), t.Category, t.Description,
		t.OccurredAt.UTC().Format(timeLayout), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", t.UserID,
		"kind", string(t.Kind),
		"amount_cents", t.Amount.Cents)

	return id, nil
}

// QueryTransactions implements ledger.Store. The period filter is always
// applied as a half-open range; kind and category-substring filters are
// optional.
func (r *Repository) QueryTransactions(ctx context.Context, userID int64, f ledger.TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT id, user_id, amount_cents, kind, category, description, occurred_at
		 FROM transactions
		 WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?`
	args := []any{userID, f.Period.Start.UTC().Format(timeLayout), f.Period.End.UTC().Format(timeLayout)}

	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if f.CategoryLike != "" {
		// LIKE is case-insensitive for ASCII only; lower() both sides to
		// keep the substring match predictable.
		query += ` AND lower(category) LIKE '%' || lower(?) || '%'`
		args = append(args, f.CategoryLike)
	}
	if f.NewestFirst {
		query += ` ORDER BY occurred_at DESC, id DESC`
	} else {
		query += ` ORDER BY occurred_at ASC, id ASC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t          core.Transaction
			kind       string
			occurredAt string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount.Cents, &kind, &t.Category, &t.Description, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.TransactionKind(kind)
		if t.OccurredAt, err = time.Parse(timeLayout, occurredAt); err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", occurredAt, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// InsertGoal implements ledger.Store.
func (r *Repository) InsertGoal(ctx context.Context, g core.Goal) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, target_cents, description, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		g.UserID, g.Target.Cents, g.Description, string(g.Status),
		g.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal id: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved",
		"id", id,
		"user_id", g.UserID,
		"target_cents", g.Target.Cents)

	return id, nil
}

// InsertOutbound persists a reply as pending delivery and returns its ID.
func (r *Repository) InsertOutbound(ctx context.Context, recipient, body string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO outbound_messages (recipient, body, status, created_at)
		 VALUES (?, ?, ?, ?)`,
		recipient, body, OutboundPending, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert outbound message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("outbound message id: %w", err)
	}
	return id, nil
}

// GetOutbound loads one outbox row by ID.
func (r *Repository) GetOutbound(ctx context.Context, id int64) (OutboundMessage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, recipient, body, status, attempts, created_at
		 FROM outbound_messages WHERE id = ?`, id)

	var (
		m         OutboundMessage
		createdAt string
	)
	if err := row.Scan(&m.ID, &m.Recipient, &m.Body, &m.Status, &m.Attempts, &createdAt); err != nil {
		return OutboundMessage{}, fmt.Errorf("query outbound message %d: %w", id, err)
	}
	var err error
	if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return OutboundMessage{}, fmt.Errorf("parse outbound created_at %q: %w", createdAt, err)
	}
	return m, nil
}

// GetPendingOutbound returns up to limit messages still waiting for
// delivery, oldest first. Backup path for lost queue publications.
func (r *Repository) GetPendingOutbound(ctx context.Context, limit int) ([]OutboundMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipient, body, status, attempts, created_at
		 FROM outbound_messages
		 WHERE status = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`, OutboundPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending outbound messages: %w", err)
	}
	defer rows.Close()

	var out []OutboundMessage
	for rows.Next() {
		var (
			m         OutboundMessage
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.Recipient, &m.Body, &m.Status, &m.Attempts, &createdAt); err != nil {
			return nil, fmt.Errorf("scan outbound message: %w", err)
		}
		if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse outbound created_at %q: %w", createdAt, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbound messages: %w", err)
	}
	return out, nil
}

// MarkOutboundSent marks a message as delivered.
func (r *Repository) MarkOutboundSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbound_messages
		 SET status = ?, attempts = attempts + 1, sent_at = ?
		 WHERE id = ?`,
		OutboundSent, time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("mark outbound sent: %w", err)
	}
	return nil
}

// MarkOutboundError records a failed delivery attempt. The message stays
// out of the pending sweep; delivery is fire-and-forget per message.
func (r *Repository) MarkOutboundError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbound_messages
		 SET status = ?, attempts = attempts + 1
		 WHERE id = ?`,
		OutboundError, id)
	if err != nil {
		return fmt.Errorf("mark outbound error: %w", err)
	}
	slog.WarnContext(ctx, "Outbound message marked with delivery error", "id", id)
	return nil
}

// normalizePhone strips everything but digits so the webhook's remoteJid
// form matches the registration form's input.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
