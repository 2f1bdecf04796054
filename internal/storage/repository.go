package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/schema"
	"budgetbook/internal/store"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLiteRepository persists records in a single SQLite file. Subscriptions
// are stored as versioned JSON payloads so older rows keep decoding after the
// record layout changes.
type SQLiteRepository struct {
	db       *sql.DB
	now      func() time.Time
	notifier store.Notifier
}

var _ store.Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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

	if err := ensureSchema(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Subscribe(l store.Listener) func() {
	return r.notifier.Subscribe(l)
}

func (r *SQLiteRepository) stamp() time.Time {
	return r.now().UTC()
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount, category, description, date, created_at
		FROM transactions
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			typ     string
			created string
		)
		if err := rows.Scan(&t.ID, &typ, &t.Amount, &t.Category, &t.Description, &t.Date, &created); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(typ)
		t.CreatedAt = parseTime(created)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	var created string
	err := r.db.QueryRowContext(ctx, `SELECT created_at FROM transactions WHERE id = ?`, t.ID).Scan(&created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		t.CreatedAt = r.stamp()
	case err != nil:
		return core.Transaction{}, fmt.Errorf("load transaction %q: %w", t.ID, err)
	default:
		t.CreatedAt = parseTime(created)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount, category, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			type = excluded.type,
			amount = excluded.amount,
			category = excluded.category,
			description = excluded.description,
			date = excluded.date`,
		t.ID, string(t.Type), t.Amount, t.Category, t.Description, t.Date, t.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("upsert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"date", t.Date)

	r.notifier.Notify(ctx, store.Change{Entity: store.EntityTransaction, Kind: store.ChangeUpsert, Key: t.ID})
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	if err := r.deleteRow(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("transaction %q: %w", id, err)
	}
	r.notifier.Notify(ctx, store.Change{Entity: store.EntityTransaction, Kind: store.ChangeDelete, Key: id})
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.MonthlyBudget, error) {
	return r.queryBudgets(ctx, "")
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, month string) (core.MonthlyBudget, error) {
	budgets, err := r.queryBudgets(ctx, month)
	if err != nil {
		return core.MonthlyBudget{}, err
	}
	if len(budgets) == 0 {
		return core.MonthlyBudget{}, fmt.Errorf("budget %q: %w", month, store.ErrNotFound)
	}
	return budgets[0], nil
}

// queryBudgets loads every budget, or only month when it is not empty.
func (r *SQLiteRepository) queryBudgets(ctx context.Context, month string) ([]core.MonthlyBudget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.month, b.updated_at, c.category, c.amount
		FROM monthly_budgets b
		LEFT JOIN budget_categories c ON c.month = b.month
		WHERE ? = '' OR b.month = ?
		ORDER BY b.month, c.category`, month, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyBudget
	for rows.Next() {
		var (
			m, updated string
			category   sql.NullString
			amount     sql.NullFloat64
		)
		if err := rows.Scan(&m, &updated, &category, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].Month != m {
			out = append(out, core.MonthlyBudget{
				Month:      m,
				Categories: map[string]float64{},
				UpdatedAt:  parseTime(updated),
			})
		}
		if category.Valid {
			out[len(out)-1].Categories[category.String] = amount.Float64
		}
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.MonthlyBudget) (core.MonthlyBudget, error) {
	if err := b.Validate(); err != nil {
		return core.MonthlyBudget{}, err
	}
	b.UpdatedAt = r.stamp()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.MonthlyBudget{}, fmt.Errorf("begin budget upsert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO monthly_budgets (month, updated_at) VALUES (?, ?)
		ON CONFLICT (month) DO UPDATE SET updated_at = excluded.updated_at`,
		b.Month, b.UpdatedAt.Format(timeLayout)); err != nil {
		return core.MonthlyBudget{}, fmt.Errorf("upsert budget: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_categories WHERE month = ?`, b.Month); err != nil {
		return core.MonthlyBudget{}, fmt.Errorf("clear budget categories: %w", err)
	}
	for category, amount := range b.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budget_categories (month, category, amount) VALUES (?, ?, ?)`,
			b.Month, category, amount); err != nil {
			return core.MonthlyBudget{}, fmt.Errorf("insert budget category %q: %w", category, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return core.MonthlyBudget{}, fmt.Errorf("commit budget upsert: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite", "month", b.Month, "categories", len(b.Categories))

	r.notifier.Notify(ctx, store.Change{Entity: store.EntityBudget, Kind: store.ChangeUpsert, Key: b.Month})
	return b, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, month string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_categories WHERE month = ?`, month); err != nil {
		return fmt.Errorf("delete budget categories: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM monthly_budgets WHERE month = ?`, month)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %q: %w", month, store.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget delete: %w", err)
	}

	r.notifier.Notify(ctx, store.Change{Entity: store.EntityBudget, Kind: store.ChangeDelete, Key: month})
	return nil
}

// ListSubscriptions decodes every stored payload, upgrading legacy rows.
// Rows that cannot be decoded are logged and skipped.
func (r *SQLiteRepository) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, payload, created_at, updated_at
		FROM subscriptions
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []core.Subscription
	for rows.Next() {
		var id, payload, created, updated string
		if err := rows.Scan(&id, &payload, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sub, err := schema.DecodeSubscription([]byte(payload))
		if err != nil {
			slog.WarnContext(ctx, "Skipping undecodable subscription", "id", id, "error", err)
			continue
		}
		sub.ID = id
		sub.CreatedAt = parseTime(created)
		sub.UpdatedAt = parseTime(updated)
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	if err := s.Validate(); err != nil {
		return core.Subscription{}, err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.stamp()
	s.UpdatedAt = now

	var created string
	err := r.db.QueryRowContext(ctx, `SELECT created_at FROM subscriptions WHERE id = ?`, s.ID).Scan(&created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.CreatedAt = now
	case err != nil:
		return core.Subscription{}, fmt.Errorf("load subscription %q: %w", s.ID, err)
	default:
		s.CreatedAt = parseTime(created)
	}

	payload, err := schema.Encode(s)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("encode subscription: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, schema_version, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			schema_version = excluded.schema_version,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		s.ID, schema.CurrentVersion, string(payload), s.CreatedAt.Format(timeLayout), s.UpdatedAt.Format(timeLayout))
	if err != nil {
		return core.Subscription{}, fmt.Errorf("upsert subscription: %w", err)
	}

	slog.InfoContext(ctx, "Subscription saved to SQLite",
		"id", s.ID,
		"service", s.ServiceName,
		"cycle", s.BillingCycle)

	r.notifier.Notify(ctx, store.Change{Entity: store.EntitySubscription, Kind: store.ChangeUpsert, Key: s.ID})
	return s, nil
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id string) error {
	if err := r.deleteRow(ctx, `DELETE FROM subscriptions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("subscription %q: %w", id, err)
	}
	r.notifier.Notify(ctx, store.Change{Entity: store.EntitySubscription, Kind: store.ChangeDelete, Key: id})
	return nil
}

func (r *SQLiteRepository) deleteRow(ctx context.Context, query, key string) error {
	res, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
