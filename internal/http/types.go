package http

import (
	"encoding/json"
	"fmt"
	"time"

	"bukocash/internal/core"
)

// Wire representations. Field names follow the client app's JSON shape;
// dates travel as "2006-01-02" strings.

// jsonAmount accepts amounts either as JSON numbers or as decimal strings
// ("12.34", "12,34"). String amounts must be positive; they go through
// core.ParseAmount so comma input rounds to cents the same way everywhere.
type jsonAmount float64

func (a *jsonAmount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return fmt.Errorf("invalid amount %q", s)
		}
		*a = jsonAmount(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = jsonAmount(f)
	return nil
}

type transactionJSON struct {
	ID                 string     `json:"id,omitempty"`
	Amount             jsonAmount `json:"amount"`
	Description        string     `json:"description"`
	Date               string     `json:"date,omitempty"`
	CategoryID         string     `json:"categoryId,omitempty"`
	WalletID           string     `json:"walletId"`
	TransferToWalletID string     `json:"transferToWalletId,omitempty"`
	Type               string     `json:"type"`
	IsBusiness         bool       `json:"isBusiness,omitempty"`
	IsRecurring        bool       `json:"isRecurring,omitempty"`
}

type walletJSON struct {
	ID               string  `json:"id,omitempty"`
	Name             string  `json:"name"`
	Balance          float64 `json:"balance"`
	BalanceFormatted string  `json:"balanceFormatted,omitempty"`
	InitialBalance   float64 `json:"initialBalance"`
	Currency         string  `json:"currency,omitempty"`
	Kind             string  `json:"type,omitempty"`
}

type categoryJSON struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
	Type  string `json:"type"`
}

type ruleJSON struct {
	ID                 string     `json:"id,omitempty"`
	Amount             jsonAmount `json:"amount"`
	Description        string     `json:"description"`
	CategoryID         string     `json:"categoryId,omitempty"`
	WalletID           string     `json:"walletId"`
	TransferToWalletID string     `json:"transferToWalletId,omitempty"`
	Type               string     `json:"type"`
	Frequency          string     `json:"frequency"`
	NextDueDate        string     `json:"nextDueDate,omitempty"`
	OriginalDay        int        `json:"originalDay,omitempty"`
	Active             bool       `json:"active"`
	IsBusiness         bool       `json:"isBusiness,omitempty"`
	AutoPay            bool       `json:"autoPay,omitempty"`
	ReminderDays       int        `json:"reminderDays,omitempty"`
}

type budgetJSON struct {
	ID         string  `json:"id,omitempty"`
	CategoryID string  `json:"categoryId"`
	Amount     float64 `json:"amount"`
	Period     string  `json:"period,omitempty"`
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(core.DateFormat, s)
	if err != nil {
		// Clients occasionally send full timestamps.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: want %s", s, core.DateFormat)
		}
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(core.DateFormat)
}

func (p transactionJSON) toCore() (core.Transaction, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:                 p.ID,
		Amount:             float64(p.Amount),
		Description:        p.Description,
		Date:               date,
		CategoryID:         p.CategoryID,
		WalletID:           p.WalletID,
		TransferToWalletID: p.TransferToWalletID,
		Type:               core.TransactionType(p.Type),
		IsBusiness:         p.IsBusiness,
		IsRecurring:        p.IsRecurring,
	}, nil
}

func transactionToJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:                 tx.ID,
		Amount:             jsonAmount(tx.Amount),
		Description:        tx.Description,
		Date:               formatDate(tx.Date),
		CategoryID:         tx.CategoryID,
		WalletID:           tx.WalletID,
		TransferToWalletID: tx.TransferToWalletID,
		Type:               string(tx.Type),
		IsBusiness:         tx.IsBusiness,
		IsRecurring:        tx.IsRecurring,
	}
}

func transactionsToJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, tx := range txs {
		out[i] = transactionToJSON(tx)
	}
	return out
}

func (p walletJSON) toCore() core.Wallet {
	return core.Wallet{
		ID:             p.ID,
		Name:           p.Name,
		InitialBalance: p.InitialBalance,
		Currency:       p.Currency,
		Kind:           core.WalletKind(p.Kind),
	}
}

func walletToJSON(w core.Wallet) walletJSON {
	return walletJSON{
		ID:               w.ID,
		Name:             w.Name,
		Balance:          w.Balance,
		BalanceFormatted: core.FormatCurrency(w.Balance, w.Currency),
		InitialBalance:   w.InitialBalance,
		Currency:         w.Currency,
		Kind:             string(w.Kind),
	}
}

func walletsToJSON(ws []core.Wallet) []walletJSON {
	out := make([]walletJSON, len(ws))
	for i, w := range ws {
		out[i] = walletToJSON(w)
	}
	return out
}

func (p categoryJSON) toCore() core.Category {
	return core.Category{
		ID:    p.ID,
		Name:  p.Name,
		Icon:  p.Icon,
		Color: p.Color,
		Type:  core.TransactionType(p.Type),
	}
}

func categoryToJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:    c.ID,
		Name:  c.Name,
		Icon:  c.Icon,
		Color: c.Color,
		Type:  string(c.Type),
	}
}

func categoriesToJSON(cs []core.Category) []categoryJSON {
	out := make([]categoryJSON, len(cs))
	for i, c := range cs {
		out[i] = categoryToJSON(c)
	}
	return out
}

func (p ruleJSON) toCore() (core.RecurringRule, error) {
	due, err := parseDate(p.NextDueDate)
	if err != nil {
		return core.RecurringRule{}, err
	}
	return core.RecurringRule{
		ID:                 p.ID,
		Amount:             float64(p.Amount),
		Description:        p.Description,
		CategoryID:         p.CategoryID,
		WalletID:           p.WalletID,
		TransferToWalletID: p.TransferToWalletID,
		Type:               core.TransactionType(p.Type),
		Frequency:          core.Frequency(p.Frequency),
		NextDueDate:        due,
		OriginalDay:        p.OriginalDay,
		IsBusiness:         p.IsBusiness,
		AutoPay:            p.AutoPay,
		ReminderDays:       p.ReminderDays,
	}, nil
}

func ruleToJSON(r core.RecurringRule) ruleJSON {
	return ruleJSON{
		ID:                 r.ID,
		Amount:             jsonAmount(r.Amount),
		Description:        r.Description,
		CategoryID:         r.CategoryID,
		WalletID:           r.WalletID,
		TransferToWalletID: r.TransferToWalletID,
		Type:               string(r.Type),
		Frequency:          string(r.Frequency),
		NextDueDate:        formatDate(r.NextDueDate),
		OriginalDay:        r.OriginalDay,
		Active:             r.Active,
		IsBusiness:         r.IsBusiness,
		AutoPay:            r.AutoPay,
		ReminderDays:       r.ReminderDays,
	}
}

func rulesToJSON(rs []core.RecurringRule) []ruleJSON {
	out := make([]ruleJSON, len(rs))
	for i, r := range rs {
		out[i] = ruleToJSON(r)
	}
	return out
}

func budgetToJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount,
		Period:     b.Period,
	}
}
