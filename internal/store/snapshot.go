package store

import (
	"time"

	"bukocash/internal/core"
)

// Snapshot is the canonical entity state the store owns. Entities are
// value-like records replaced wholesale on mutation; nothing outside the
// store ever holds a mutable reference into one.
type Snapshot struct {
	Version           int64
	Wallets           []core.Wallet
	Transactions      []core.Transaction
	Categories        []core.Category
	RecurringRules    []core.RecurringRule
	Budgets           []core.Budget
	HasOnboarded      bool
	SecurityPIN       string
	BiometricsEnabled bool
	UserID            string
	LastSynced        time.Time
}

// Clone returns a deep copy of the snapshot. Commands always work on a
// clone and swap it in atomically, so readers never observe intermediate
// state.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Wallets = append([]core.Wallet(nil), s.Wallets...)
	out.Transactions = append([]core.Transaction(nil), s.Transactions...)
	out.Categories = append([]core.Category(nil), s.Categories...)
	out.RecurringRules = append([]core.RecurringRule(nil), s.RecurringRules...)
	out.Budgets = append([]core.Budget(nil), s.Budgets...)
	return out
}

// TotalBalance sums every wallet balance, sanitized step by step.
func (s Snapshot) TotalBalance() float64 {
	total := 0.0
	for _, w := range s.Wallets {
		total = core.Sanitize(total + w.Balance)
	}
	return total
}

func (s Snapshot) wallet(id string) (core.Wallet, bool) {
	for _, w := range s.Wallets {
		if w.ID == id {
			return w, true
		}
	}
	return core.Wallet{}, false
}

func (s Snapshot) category(id string) (core.Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}
