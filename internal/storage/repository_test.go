package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bukocash/internal/core"
	"bukocash/internal/store"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleSnapshot() store.Snapshot {
	return store.Snapshot{
		Version: 7,
		Wallets: []core.Wallet{
			{ID: "w1", Name: "Efectivo", Balance: 87.50, InitialBalance: 100, Currency: "USD", Kind: core.WalletCash},
			{ID: "w2", Name: "Ahorros", Balance: 12.50, InitialBalance: 0, Currency: "MXN", Kind: core.WalletSavings},
		},
		Transactions: []core.Transaction{
			{
				ID: "t1", Amount: 12.50, Description: `Cena "rápida"`,
				Date:     time.Date(2024, 4, 5, 18, 30, 0, 0, time.UTC),
				WalletID: "w1", TransferToWalletID: "w2", Type: core.Transfer,
			},
			{
				ID: "t2", Amount: 9.99, Description: "Streaming",
				Date:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
				CategoryID: "exp5", WalletID: "w1", Type: core.Expense,
				IsBusiness: true, IsRecurring: true,
			},
		},
		Categories: []core.Category{
			{ID: "exp5", Name: "Suscripciones", Icon: "Tv", Color: "text-indigo-400", Type: core.Expense},
		},
		RecurringRules: []core.RecurringRule{
			{
				ID: "r1", Amount: 9.99, Description: "Streaming", CategoryID: "exp5",
				WalletID: "w1", Type: core.Expense, Frequency: core.Monthly,
				NextDueDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				OriginalDay: 31, Active: true, AutoPay: true, ReminderDays: 3,
			},
		},
		Budgets: []core.Budget{
			{ID: "b1", CategoryID: "exp5", Amount: 50, Period: "monthly"},
		},
		HasOnboarded:      true,
		SecurityPIN:       "4321",
		BiometricsEnabled: true,
		UserID:            "user-1",
		LastSynced:        time.Date(2024, 4, 5, 19, 0, 0, 0, time.UTC),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	original := sampleSnapshot()

	if err := repo.SaveSnapshot(ctx, original); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if loaded.Version != original.Version {
		t.Errorf("Version = %d, want %d", loaded.Version, original.Version)
	}
	if !loaded.HasOnboarded || loaded.SecurityPIN != "4321" || !loaded.BiometricsEnabled || loaded.UserID != "user-1" {
		t.Errorf("settings did not round-trip: %+v", loaded)
	}
	if !loaded.LastSynced.Equal(original.LastSynced) {
		t.Errorf("LastSynced = %v, want %v", loaded.LastSynced, original.LastSynced)
	}

	if len(loaded.Wallets) != 2 || loaded.Wallets[0] != original.Wallets[0] || loaded.Wallets[1] != original.Wallets[1] {
		t.Errorf("wallets did not round-trip: %+v", loaded.Wallets)
	}

	if len(loaded.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(loaded.Transactions))
	}
	for i, tx := range loaded.Transactions {
		want := original.Transactions[i]
		if tx.ID != want.ID || tx.Amount != want.Amount || tx.Description != want.Description ||
			!tx.Date.Equal(want.Date) || tx.CategoryID != want.CategoryID ||
			tx.WalletID != want.WalletID || tx.TransferToWalletID != want.TransferToWalletID ||
			tx.Type != want.Type || tx.IsBusiness != want.IsBusiness || tx.IsRecurring != want.IsRecurring {
			t.Errorf("transaction %d = %+v, want %+v", i, tx, want)
		}
	}

	if len(loaded.RecurringRules) != 1 {
		t.Fatalf("rules = %d, want 1", len(loaded.RecurringRules))
	}
	rule, want := loaded.RecurringRules[0], original.RecurringRules[0]
	if rule.ID != want.ID || rule.OriginalDay != want.OriginalDay || !rule.NextDueDate.Equal(want.NextDueDate) ||
		rule.Active != want.Active || rule.AutoPay != want.AutoPay || rule.ReminderDays != want.ReminderDays {
		t.Errorf("rule = %+v, want %+v", rule, want)
	}

	if len(loaded.Categories) != 1 || loaded.Categories[0] != original.Categories[0] {
		t.Errorf("categories did not round-trip: %+v", loaded.Categories)
	}
	if len(loaded.Budgets) != 1 || loaded.Budgets[0] != original.Budgets[0] {
		t.Errorf("budgets did not round-trip: %+v", loaded.Budgets)
	}
}

func TestSaveReplacesWholesale(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	smaller := sampleSnapshot()
	smaller.Version = 8
	smaller.Transactions = smaller.Transactions[:1]
	smaller.Budgets = nil
	if err := repo.SaveSnapshot(ctx, smaller); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(loaded.Transactions) != 1 || len(loaded.Budgets) != 0 {
		t.Errorf("stale rows survived: %d transactions, %d budgets",
			len(loaded.Transactions), len(loaded.Budgets))
	}
	if loaded.Version != 8 {
		t.Errorf("Version = %d, want 8", loaded.Version)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	repo := newTestRepository(t)

	snapshot, err := repo.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot on empty db: %v", err)
	}
	if snapshot.Version != 0 {
		t.Errorf("empty db Version = %d, want 0 (store seeds defaults)", snapshot.Version)
	}
}
