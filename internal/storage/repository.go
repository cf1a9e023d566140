// Package storage persists the entity snapshot in SQLite. The core treats
// it purely as "load initial snapshot" / "snapshot changed, persist it":
// every save replaces the stored entity rows wholesale inside one database
// transaction, mirroring the value semantics of the in-memory snapshot.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"bukocash/internal/core"
	"bukocash/internal/store"
)

type SQLiteRepository struct {
	db *sql.DB
}

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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveSnapshot implements store.Persister. The entity tables are replaced
// wholesale under one transaction so a reader never sees a half-written
// snapshot.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, snapshot store.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"wallets", "transactions", "categories", "recurring_rules", "budgets", "snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, w := range snapshot.Wallets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO wallets (id, name, balance, initial_balance, currency, kind, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			w.ID, w.Name, w.Balance, w.InitialBalance, w.Currency, string(w.Kind), i)
		if err != nil {
			return fmt.Errorf("insert wallet %s: %w", w.ID, err)
		}
	}

	for i, t := range snapshot.Transactions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, amount, description, date, category_id, wallet_id,
			     transfer_to_wallet_id, type, is_business, is_recurring, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Amount, t.Description, t.Date.UTC().Format(time.RFC3339Nano),
			t.CategoryID, t.WalletID, t.TransferToWalletID, string(t.Type),
			boolInt(t.IsBusiness), boolInt(t.IsRecurring), i)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	for i, c := range snapshot.Categories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, icon, color, type, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Icon, c.Color, string(c.Type), i)
		if err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}

	for i, rule := range snapshot.RecurringRules {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recurring_rules (id, amount, description, category_id, wallet_id,
			     transfer_to_wallet_id, type, frequency, next_due_date, original_day,
			     active, is_business, auto_pay, reminder_days, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rule.ID, rule.Amount, rule.Description, rule.CategoryID, rule.WalletID,
			rule.TransferToWalletID, string(rule.Type), string(rule.Frequency),
			rule.NextDueDate.UTC().Format(time.RFC3339Nano), rule.OriginalDay,
			boolInt(rule.Active), boolInt(rule.IsBusiness), boolInt(rule.AutoPay),
			rule.ReminderDays, i)
		if err != nil {
			return fmt.Errorf("insert recurring rule %s: %w", rule.ID, err)
		}
	}

	for i, b := range snapshot.Budgets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (id, category_id, amount, period, position)
			 VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.CategoryID, b.Amount, b.Period, i)
		if err != nil {
			return fmt.Errorf("insert budget %s: %w", b.ID, err)
		}
	}

	lastSynced := ""
	if !snapshot.LastSynced.IsZero() {
		lastSynced = snapshot.LastSynced.UTC().Format(time.RFC3339Nano)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, version, has_onboarded, security_pin, biometrics_enabled, user_id, last_synced)
		 VALUES (1, ?, ?, ?, ?, ?, ?)`,
		snapshot.Version, boolInt(snapshot.HasOnboarded), snapshot.SecurityPIN,
		boolInt(snapshot.BiometricsEnabled), snapshot.UserID, lastSynced)
	if err != nil {
		return fmt.Errorf("insert snapshot meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot persisted",
		"version", snapshot.Version,
		"transactions", len(snapshot.Transactions),
		"wallets", len(snapshot.Wallets))
	return nil
}

// LoadSnapshot reads the persisted snapshot. A database that has never been
// saved to returns a zero-version snapshot; the store seeds defaults for it.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (store.Snapshot, error) {
	var snapshot store.Snapshot

	var lastSynced string
	err := r.db.QueryRowContext(ctx,
		`SELECT version, has_onboarded, security_pin, biometrics_enabled, user_id, last_synced
		 FROM snapshot_meta WHERE id = 1`).
		Scan(&snapshot.Version, intBool(&snapshot.HasOnboarded), &snapshot.SecurityPIN,
			intBool(&snapshot.BiometricsEnabled), &snapshot.UserID, &lastSynced)
	if err == sql.ErrNoRows {
		return store.Snapshot{}, nil
	}
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("load snapshot meta: %w", err)
	}
	if lastSynced != "" {
		ts, err := time.Parse(time.RFC3339Nano, lastSynced)
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("parse last synced: %w", err)
		}
		snapshot.LastSynced = ts
	}

	if snapshot.Wallets, err = r.loadWallets(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snapshot.Transactions, err = r.loadTransactions(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snapshot.Categories, err = r.loadCategories(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snapshot.RecurringRules, err = r.loadRecurringRules(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snapshot.Budgets, err = r.loadBudgets(ctx); err != nil {
		return store.Snapshot{}, err
	}
	return snapshot, nil
}

func (r *SQLiteRepository) loadWallets(ctx context.Context) ([]core.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, balance, initial_balance, currency, kind FROM wallets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}
	defer rows.Close()

	var wallets []core.Wallet
	for rows.Next() {
		var w core.Wallet
		var kind string
		if err := rows.Scan(&w.ID, &w.Name, &w.Balance, &w.InitialBalance, &w.Currency, &kind); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		w.Kind = core.WalletKind(kind)
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (r *SQLiteRepository) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, description, date, category_id, wallet_id,
		        transfer_to_wallet_id, type, is_business, is_recurring
		 FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date, typ string
		if err := rows.Scan(&t.ID, &t.Amount, &t.Description, &date, &t.CategoryID,
			&t.WalletID, &t.TransferToWalletID, &typ,
			intBool(&t.IsBusiness), intBool(&t.IsRecurring)); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		t.Type = core.TransactionType(typ)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) loadCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, color, type FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) loadRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, description, category_id, wallet_id, transfer_to_wallet_id,
		        type, frequency, next_due_date, original_day, active, is_business,
		        auto_pay, reminder_days
		 FROM recurring_rules ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load recurring rules: %w", err)
	}
	defer rows.Close()

	var rules []core.RecurringRule
	for rows.Next() {
		var rule core.RecurringRule
		var typ, freq, due string
		if err := rows.Scan(&rule.ID, &rule.Amount, &rule.Description, &rule.CategoryID,
			&rule.WalletID, &rule.TransferToWalletID, &typ, &freq, &due,
			&rule.OriginalDay, intBool(&rule.Active), intBool(&rule.IsBusiness),
			intBool(&rule.AutoPay), &rule.ReminderDays); err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		if rule.NextDueDate, err = time.Parse(time.RFC3339Nano, due); err != nil {
			return nil, fmt.Errorf("parse rule due date %q: %w", due, err)
		}
		rule.Type = core.TransactionType(typ)
		rule.Frequency = core.Frequency(freq)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *SQLiteRepository) loadBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, amount, period FROM budgets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.Amount, &b.Period); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// intBool adapts a *bool to database/sql scanning of 0/1 integers.
type intBoolScanner struct{ b *bool }

func intBool(b *bool) *intBoolScanner { return &intBoolScanner{b} }

func (s *intBoolScanner) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*s.b = v != 0
	case bool:
		*s.b = v
	case nil:
		*s.b = false
	default:
		return fmt.Errorf("cannot scan %T into bool", src)
	}
	return nil
}
