package ledger

import (
	"testing"
	"time"

	"bukocash/internal/core"
)

func twoWallets() []core.Wallet {
	return []core.Wallet{
		{ID: "a", Name: "Cash", Balance: 100, InitialBalance: 100, Currency: "USD", Kind: core.WalletCash},
		{ID: "b", Name: "Bank", Balance: 10, InitialBalance: 10, Currency: "USD", Kind: core.WalletDebit},
	}
}

func tx(typ core.TransactionType, amount float64, from, to string) core.Transaction {
	return core.Transaction{
		ID:                 "tx",
		Amount:             amount,
		Description:        "test",
		Date:               time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CategoryID:         "c1",
		WalletID:           from,
		TransferToWalletID: to,
		Type:               typ,
	}
}

func TestImpact(t *testing.T) {
	tests := []struct {
		name     string
		tx       core.Transaction
		walletID string
		want     float64
	}{
		{"income credits origin", tx(core.Income, 50, "a", ""), "a", 50},
		{"income ignores others", tx(core.Income, 50, "a", ""), "b", 0},
		{"expense debits origin", tx(core.Expense, 20, "a", ""), "a", -20},
		{"expense ignores others", tx(core.Expense, 20, "a", ""), "b", 0},
		{"transfer debits origin", tx(core.Transfer, 30, "a", "b"), "a", -30},
		{"transfer credits destination", tx(core.Transfer, 30, "a", "b"), "b", 30},
		{"transfer ignores third wallet", tx(core.Transfer, 30, "a", "b"), "c", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Impact(tt.tx, tt.walletID); got != tt.want {
				t.Errorf("Impact() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransferSymmetry(t *testing.T) {
	wallets := twoWallets()
	transfer := tx(core.Transfer, 30, "a", "b")

	after := Apply(wallets, transfer)
	if after[0].Balance != 70 || after[1].Balance != 40 {
		t.Fatalf("after transfer: a=%v b=%v, want a=70 b=40", after[0].Balance, after[1].Balance)
	}

	restored := Revert(after, transfer)
	if restored[0].Balance != 100 || restored[1].Balance != 10 {
		t.Fatalf("after revert: a=%v b=%v, want a=100 b=10", restored[0].Balance, restored[1].Balance)
	}

	// The input slices were never mutated.
	if wallets[0].Balance != 100 || wallets[1].Balance != 10 {
		t.Fatal("Apply mutated its input")
	}
}

func TestApplyRevertInverse(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, 0.10, "a", ""),
		tx(core.Expense, 0.20, "a", ""),
		tx(core.Transfer, 33.33, "a", "b"),
		tx(core.Expense, 1234.56, "b", ""),
	}
	for _, transaction := range txs {
		wallets := twoWallets()
		restored := Revert(Apply(wallets, transaction), transaction)
		for i := range wallets {
			if restored[i].Balance != wallets[i].Balance {
				t.Errorf("%s %v: wallet %s balance %v, want %v",
					transaction.Type, transaction.Amount, wallets[i].ID,
					restored[i].Balance, wallets[i].Balance)
			}
		}
	}
}

func TestRoundingStability(t *testing.T) {
	// 100 income 0.10 / expense 0.20 pairs must land on the exact
	// analytically expected cent value, with zero accumulated drift.
	wallets := []core.Wallet{{ID: "a", Balance: 50, InitialBalance: 50}}
	income := tx(core.Income, 0.10, "a", "")
	expense := tx(core.Expense, 0.20, "a", "")

	for i := 0; i < 100; i++ {
		wallets = Apply(wallets, income)
		wallets = Apply(wallets, expense)
	}

	// 50 + 100*(0.10 - 0.20) = 40.00 exactly.
	if wallets[0].Balance != 40.00 {
		t.Fatalf("balance after 100 pairs = %v, want 40.00", wallets[0].Balance)
	}
}

func TestRecompute(t *testing.T) {
	wallets := twoWallets()
	history := []core.Transaction{
		tx(core.Income, 25.25, "a", ""),
		tx(core.Expense, 5.05, "a", ""),
		tx(core.Transfer, 10, "a", "b"),
	}

	running := wallets
	for _, transaction := range history {
		running = Apply(running, transaction)
	}

	for i, w := range wallets {
		if got := Recompute(w, history); got != running[i].Balance {
			t.Errorf("Recompute(%s) = %v, running balance %v", w.ID, got, running[i].Balance)
		}
	}
}
