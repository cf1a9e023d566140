package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	WalletCash    WalletKind = "cash"
	WalletDebit   WalletKind = "debit"
	WalletCredit  WalletKind = "credit"
	WalletSavings WalletKind = "savings"
)

type (
	TransactionType string

	Frequency string

	WalletKind string

	// Wallet is an account holding a monetary balance. Balance is derived:
	// it always equals InitialBalance plus the signed impact of every
	// transaction referencing the wallet, sanitized after each step.
	Wallet struct {
		ID             string
		Name           string
		Balance        float64
		InitialBalance float64
		Currency       string
		Kind           WalletKind
	}

	// Transaction is a single monetary event affecting one or two wallets.
	// Amount is a strictly positive magnitude; the sign of its effect on a
	// wallet comes from Type and the wallet's role (origin or destination).
	Transaction struct {
		ID                 string
		Amount             float64
		Description        string
		Date               time.Time
		CategoryID         string // empty only for transfers
		WalletID           string // origin
		TransferToWalletID string // destination, required iff Type == Transfer
		Type               TransactionType
		IsBusiness         bool
		IsRecurring        bool
	}

	// RecurringRule is a template that periodically produces transactions.
	// OriginalDay anchors monthly and yearly rules to a day-of-month so a
	// rule pinned to the 31st does not drift after short months.
	RecurringRule struct {
		ID                 string
		Amount             float64
		Description        string
		CategoryID         string
		WalletID           string
		TransferToWalletID string
		Type               TransactionType
		Frequency          Frequency
		NextDueDate        time.Time
		OriginalDay        int // 1-31
		Active             bool
		IsBusiness         bool
		AutoPay            bool
		ReminderDays       int
	}

	Category struct {
		ID    string
		Name  string
		Icon  string
		Color string
		Type  TransactionType
	}

	// Budget is a monthly spending target for a single category.
	Budget struct {
		ID         string
		CategoryID string
		Amount     float64
		Period     string // always "monthly"
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrMissingWallet      = errors.New("missing wallet id")
	ErrMissingDestination = errors.New("transfer without destination wallet")
	ErrMissingCategory    = errors.New("missing category id")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidAnchorDay   = errors.New("invalid anchor day")
	ErrZeroDate           = errors.New("date cannot be zero")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if !ValidAmount(tx.Amount) || tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if tx.Date.IsZero() {
		return ErrZeroDate
	}
	if tx.WalletID == "" {
		return ErrMissingWallet
	}
	if tx.Type == Transfer && tx.TransferToWalletID == "" {
		return ErrMissingDestination
	}
	if tx.Type != Transfer && tx.CategoryID == "" {
		return ErrMissingCategory
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if !ValidAmount(r.Amount) || r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if r.NextDueDate.IsZero() {
		return ErrZeroDate
	}
	if r.WalletID == "" {
		return ErrMissingWallet
	}
	if r.Type == Transfer && r.TransferToWalletID == "" {
		return ErrMissingDestination
	}
	if r.Type != Transfer && r.CategoryID == "" {
		return ErrMissingCategory
	}
	if r.OriginalDay < 1 || r.OriginalDay > 31 {
		return ErrInvalidAnchorDay
	}
	return nil
}

func (w Wallet) Validate() error {
	if len(strings.TrimSpace(w.Name)) == 0 {
		return ErrEmptyDescription
	}
	if !ValidAmount(w.InitialBalance) {
		return ErrInvalidAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID == "" {
		return ErrMissingCategory
	}
	if !ValidAmount(b.Amount) || b.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
