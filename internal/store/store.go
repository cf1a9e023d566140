// Package store implements the entity store: the single owner of the
// canonical snapshot of wallets, transactions, categories, recurring rules,
// and budgets. Every command runs to completion under one lock — compute a
// new snapshot from a clone, swap it in — before the next command may
// observe state, then triggers persistence and a fire-and-forget remote
// mirror notification.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bukocash/internal/core"
	"bukocash/internal/ledger"
	"bukocash/internal/metrics"
	"bukocash/internal/scheduler"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrRuleNotFound        = errors.New("recurring rule not found")
	ErrBudgetNotFound      = errors.New("budget not found")

	// Referential-integrity guards. Deletes fail whole: no partial removal.
	ErrWalletInUse   = errors.New("wallet is referenced by transactions")
	ErrLastWallet    = errors.New("at least one wallet must remain")
	ErrCategoryInUse = errors.New("category is referenced by transactions or recurring rules")
)

// Persister stores a snapshot after a successful command. The store treats
// persistence as best-effort: an I/O failure is logged, never surfaced to
// the command that already completed its pure computation.
type Persister interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
}

// ChangeNotifier receives a fire-and-forget signal after every mutation.
// The remote mirror hangs off this; its failure is unobservable here.
type ChangeNotifier interface {
	SnapshotChanged(version int64)
}

// Store owns the canonical snapshot and routes every command through the
// ledger and scheduler.
type Store struct {
	mu       sync.Mutex
	snapshot Snapshot

	persist Persister      // optional
	notify  ChangeNotifier // optional
	newID   func() string
	clock   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPersister sets the snapshot persistence collaborator.
func WithPersister(p Persister) Option { return func(s *Store) { s.persist = p } }

// WithNotifier sets the remote mirror notifier.
func WithNotifier(n ChangeNotifier) Option { return func(s *Store) { s.notify = n } }

// WithIDGenerator overrides entity ID generation. Tests use this for
// deterministic IDs.
func WithIDGenerator(f func() string) Option { return func(s *Store) { s.newID = f } }

// WithClock overrides the time source.
func WithClock(f func() time.Time) Option { return func(s *Store) { s.clock = f } }

// New creates a store starting from the given snapshot. A zero-valued
// snapshot gets the seeded defaults.
func New(snapshot Snapshot, opts ...Option) *Store {
	if snapshot.Version == 0 {
		snapshot = NewSnapshot()
	}
	s := &Store{
		snapshot: snapshot,
		newID:    uuid.NewString,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// commit swaps in the new snapshot, bumps its version, persists it, and
// notifies the mirror. Caller holds the lock.
func (s *Store) commit(ctx context.Context, next Snapshot) {
	next.Version = s.snapshot.Version + 1
	s.snapshot = next

	if s.persist != nil {
		if err := s.persist.SaveSnapshot(ctx, next.Clone()); err != nil {
			slog.ErrorContext(ctx, "Failed to persist snapshot",
				"version", next.Version, "error", err)
		}
	}
	if s.notify != nil {
		s.notify.SnapshotChanged(next.Version)
	}
}

// AddTransaction validates and records a transaction, applying its impact
// to wallet balances. A zero date defaults to now.
func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = s.newID()
	if tx.Date.IsZero() {
		tx.Date = s.clock()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkWalletRefs(tx); err != nil {
		return core.Transaction{}, err
	}

	next := s.snapshot.Clone()
	next.Transactions = insertSorted(next.Transactions, tx)
	next.Wallets = ledger.Apply(next.Wallets, tx)
	s.commit(ctx, next)

	slog.InfoContext(ctx, "Transaction recorded",
		"id", tx.ID, "type", tx.Type, "amount", tx.Amount, "wallet", tx.WalletID)
	return tx, nil
}

// UpdateTransaction replaces a transaction wholesale: the old effect is
// reverted and the new one applied inside the same command, so no reader
// ever sees the intermediate wallet state.
func (s *Store) UpdateTransaction(ctx context.Context, id string, updated core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfTx(s.snapshot.Transactions, id)
	if idx < 0 {
		return core.Transaction{}, ErrTransactionNotFound
	}
	old := s.snapshot.Transactions[idx]

	updated.ID = old.ID
	if updated.Date.IsZero() {
		updated.Date = old.Date
	}
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkWalletRefs(updated); err != nil {
		return core.Transaction{}, err
	}

	next := s.snapshot.Clone()
	next.Wallets = ledger.Apply(ledger.Revert(next.Wallets, old), updated)
	next.Transactions[idx] = updated
	sortTransactions(next.Transactions)
	s.commit(ctx, next)

	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return updated, nil
}

// DeleteTransaction removes a transaction and reverts its balance impact.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfTx(s.snapshot.Transactions, id)
	if idx < 0 {
		return ErrTransactionNotFound
	}

	next := s.snapshot.Clone()
	tx := next.Transactions[idx]
	next.Transactions = append(next.Transactions[:idx], next.Transactions[idx+1:]...)
	next.Wallets = ledger.Revert(next.Wallets, tx)
	s.commit(ctx, next)

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// AddWallet creates a wallet whose starting balance is its sanitized
// initial balance.
func (s *Store) AddWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.ID = s.newID()
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	w.InitialBalance = core.Sanitize(w.InitialBalance)
	w.Balance = w.InitialBalance

	next := s.snapshot.Clone()
	next.Wallets = append(next.Wallets, w)
	s.commit(ctx, next)

	slog.InfoContext(ctx, "Wallet added", "id", w.ID, "name", w.Name)
	return w, nil
}

// UpdateWallet changes a wallet's descriptive fields. Balance and initial
// balance are derived state and cannot be patched.
func (s *Store) UpdateWallet(ctx context.Context, id, name, currency string, kind core.WalletKind) (core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot.Clone()
	for i, w := range next.Wallets {
		if w.ID != id {
			continue
		}
		if name != "" {
			w.Name = name
		}
		if currency != "" {
			w.Currency = currency
		}
		if kind != "" {
			w.Kind = kind
		}
		if err := w.Validate(); err != nil {
			return core.Wallet{}, err
		}
		next.Wallets[i] = w
		s.commit(ctx, next)
		return w, nil
	}
	return core.Wallet{}, ErrWalletNotFound
}

// DeleteWallet removes a wallet. It fails if any transaction references the
// wallet as origin or destination, or if it is the last wallet.
func (s *Store) DeleteWallet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshot.wallet(id); !ok {
		return ErrWalletNotFound
	}
	if len(s.snapshot.Wallets) <= 1 {
		return ErrLastWallet
	}
	for _, tx := range s.snapshot.Transactions {
		if tx.WalletID == id || tx.TransferToWalletID == id {
			return ErrWalletInUse
		}
	}

	next := s.snapshot.Clone()
	kept := next.Wallets[:0]
	for _, w := range next.Wallets {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	next.Wallets = kept
	s.commit(ctx, next)

	slog.InfoContext(ctx, "Wallet deleted", "id", id)
	return nil
}

// AddCategory creates a category.
func (s *Store) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Name == "" {
		return core.Category{}, core.ErrEmptyDescription
	}
	if !c.Type.Valid() {
		return core.Category{}, core.ErrInvalidType
	}
	c.ID = s.newID()

	next := s.snapshot.Clone()
	next.Categories = append(next.Categories, c)
	s.commit(ctx, next)
	return c, nil
}

// DeleteCategory removes a category and its budgets. It fails if any
// transaction or recurring rule, active or not, references the category.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshot.category(id); !ok {
		return ErrCategoryNotFound
	}
	for _, tx := range s.snapshot.Transactions {
		if tx.CategoryID == id {
			return ErrCategoryInUse
		}
	}
	for _, rule := range s.snapshot.RecurringRules {
		if rule.CategoryID == id {
			return ErrCategoryInUse
		}
	}

	next := s.snapshot.Clone()
	cats := next.Categories[:0]
	for _, c := range next.Categories {
		if c.ID != id {
			cats = append(cats, c)
		}
	}
	next.Categories = cats

	budgets := next.Budgets[:0]
	for _, b := range next.Budgets {
		if b.CategoryID != id {
			budgets = append(budgets, b)
		}
	}
	next.Budgets = budgets
	s.commit(ctx, next)

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// AddRecurringRule registers a rule. The anchor day is captured from the
// first due date; a zero due date defaults to today, which also makes the
// rule immediately due. AutoPay rules are caught up right away.
func (s *Store) AddRecurringRule(ctx context.Context, rule core.RecurringRule) (core.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule.ID = s.newID()
	rule.Active = true
	if rule.NextDueDate.IsZero() {
		rule.NextDueDate = core.Midnight(s.clock())
	} else {
		rule.NextDueDate = core.Midnight(rule.NextDueDate)
	}
	if rule.OriginalDay == 0 {
		rule.OriginalDay = rule.NextDueDate.Day()
	}
	if err := rule.Validate(); err != nil {
		return core.RecurringRule{}, err
	}

	next := s.snapshot.Clone()
	next.RecurringRules = append(next.RecurringRules, rule)
	s.commit(ctx, next)

	slog.InfoContext(ctx, "Recurring rule added",
		"id", rule.ID, "frequency", rule.Frequency, "auto_pay", rule.AutoPay,
		"next_due", rule.NextDueDate.Format(core.DateFormat))

	if rule.AutoPay {
		s.processRecurringLocked(ctx)
	}
	return rule, nil
}

// DeleteRecurringRule removes a rule. Generated transactions stay.
func (s *Store) DeleteRecurringRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot.Clone()
	kept := next.RecurringRules[:0]
	found := false
	for _, r := range next.RecurringRules {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return ErrRuleNotFound
	}
	next.RecurringRules = kept
	s.commit(ctx, next)
	return nil
}

// ConfirmRecurring records one user-confirmed occurrence of a non-autopay
// rule, dated now, and advances its due date a single step.
func (s *Store) ConfirmRecurring(ctx context.Context, ruleID string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot.Clone()
	for i, rule := range next.RecurringRules {
		if rule.ID != ruleID {
			continue
		}
		updated, tx := scheduler.Confirm(rule, s.clock(), s.newID)
		next.RecurringRules[i] = updated
		next.Transactions = insertSorted(next.Transactions, tx)
		next.Wallets = ledger.Apply(next.Wallets, tx)
		s.commit(ctx, next)

		slog.InfoContext(ctx, "Recurring rule confirmed",
			"rule", ruleID, "transaction", tx.ID,
			"next_due", updated.NextDueDate.Format(core.DateFormat))
		return tx, nil
	}
	return core.Transaction{}, ErrRuleNotFound
}

// ProcessRecurring catches up every overdue autopay rule and returns the
// number of transactions generated. Safe to call repeatedly; once every due
// date is in the future it generates nothing.
func (s *Store) ProcessRecurring(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processRecurringLocked(ctx)
}

func (s *Store) processRecurringLocked(ctx context.Context) int {
	result := scheduler.CatchUp(s.snapshot.RecurringRules, s.snapshot.Wallets, s.clock(), s.newID)
	if result.Generated == 0 {
		return 0
	}

	next := s.snapshot.Clone()
	next.RecurringRules = result.Rules
	next.Wallets = result.Wallets
	for _, tx := range result.Transactions {
		next.Transactions = insertSorted(next.Transactions, tx)
	}
	s.commit(ctx, next)

	slog.InfoContext(ctx, "Recurring catch-up complete", "generated", result.Generated)
	return result.Generated
}

// Upcoming returns the active rules due within the lookahead window,
// sorted ascending by due date.
func (s *Store) Upcoming(lookaheadDays int) []core.RecurringRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lookaheadDays <= 0 {
		lookaheadDays = scheduler.DefaultLookaheadDays
	}
	return scheduler.Upcoming(s.snapshot.RecurringRules, s.clock(), lookaheadDays)
}

// SetBudget upserts the monthly budget for a category.
func (s *Store) SetBudget(ctx context.Context, categoryID string, amount float64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshot.category(categoryID); !ok {
		return core.Budget{}, ErrCategoryNotFound
	}
	b := core.Budget{CategoryID: categoryID, Amount: core.Sanitize(amount), Period: "monthly"}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	next := s.snapshot.Clone()
	for i, existing := range next.Budgets {
		if existing.CategoryID == categoryID {
			b.ID = existing.ID
			next.Budgets[i] = b
			s.commit(ctx, next)
			return b, nil
		}
	}
	b.ID = s.newID()
	next.Budgets = append(next.Budgets, b)
	s.commit(ctx, next)
	return b, nil
}

// DeleteBudget removes a budget.
func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot.Clone()
	kept := next.Budgets[:0]
	found := false
	for _, b := range next.Budgets {
		if b.ID == id {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return ErrBudgetNotFound
	}
	next.Budgets = kept
	s.commit(ctx, next)
	return nil
}

// SetOnboarded records that onboarding finished.
func (s *Store) SetOnboarded(ctx context.Context, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snapshot.Clone()
	next.HasOnboarded = done
	s.commit(ctx, next)
}

// SetSecurityPIN stores or clears the security PIN. Lockout behavior is
// the caller's concern.
func (s *Store) SetSecurityPIN(ctx context.Context, pin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snapshot.Clone()
	next.SecurityPIN = pin
	s.commit(ctx, next)
}

// SetBiometricsEnabled stores the biometrics flag.
func (s *Store) SetBiometricsEnabled(ctx context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snapshot.Clone()
	next.BiometricsEnabled = enabled
	s.commit(ctx, next)
}

// SetUser stores the opaque user identity.
func (s *Store) SetUser(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snapshot.Clone()
	next.UserID = userID
	s.commit(ctx, next)
}

// MarkSyncComplete records the remote mirror's success timestamp. The
// mirror calls this; the store never waits on it.
func (s *Store) MarkSyncComplete(ctx context.Context, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snapshot.Clone()
	next.LastSynced = ts
	// Persist without notifying: the sync timestamp must not re-trigger
	// the mirror.
	next.Version = s.snapshot.Version + 1
	s.snapshot = next
	if s.persist != nil {
		if err := s.persist.SaveSnapshot(ctx, next.Clone()); err != nil {
			slog.ErrorContext(ctx, "Failed to persist sync timestamp", "error", err)
		}
	}
}

// Reset restores the seeded defaults and clears everything else.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := NewSnapshot()
	s.commit(ctx, next)
	slog.InfoContext(ctx, "Store reset to defaults")
}

// SafeToSpend is the current total balance minus near-term committed
// recurring expenses.
func (s *Store) SafeToSpend() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.SafeToSpend(s.snapshot.TotalBalance(), s.snapshot.RecurringRules, s.clock())
}

// Health computes the current month's health metrics.
func (s *Store) Health() metrics.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.HealthMetrics(s.snapshot.Transactions, s.clock())
}

// BusinessReport computes the current month's business profit view.
func (s *Store) BusinessReport() metrics.BusinessReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.Business(s.snapshot.Transactions, s.clock())
}

// BudgetReport computes each budget's current-month status.
func (s *Store) BudgetReport() []metrics.BudgetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.BudgetReport(s.snapshot.Budgets, s.snapshot.Transactions, s.clock())
}

// CheckIntegrity recomputes every wallet balance from scratch and reports
// any that disagree with the running balance.
func (s *Store) CheckIntegrity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.snapshot.Wallets {
		expected := ledger.Recompute(w, s.snapshot.Transactions)
		if expected != w.Balance {
			return fmt.Errorf("wallet %s: running balance %v, recomputed %v", w.ID, w.Balance, expected)
		}
	}
	return nil
}

// checkWalletRefs verifies the wallets a transaction references exist.
func (s *Store) checkWalletRefs(tx core.Transaction) error {
	if _, ok := s.snapshot.wallet(tx.WalletID); !ok {
		return ErrWalletNotFound
	}
	if tx.Type == core.Transfer {
		if _, ok := s.snapshot.wallet(tx.TransferToWalletID); !ok {
			return ErrWalletNotFound
		}
	}
	return nil
}

func indexOfTx(txs []core.Transaction, id string) int {
	for i, tx := range txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// insertSorted keeps the transaction list ordered newest first.
func insertSorted(txs []core.Transaction, tx core.Transaction) []core.Transaction {
	txs = append(txs, tx)
	sortTransactions(txs)
	return txs
}

func sortTransactions(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
}
