package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func validTx() Transaction {
	return Transaction{
		ID:          "tx1",
		Amount:      12.50,
		Description: "Groceries",
		Date:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:  "exp1",
		WalletID:    "w1",
		Type:        Expense,
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid expense", func(tx *Transaction) {}, nil},
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = -5 }, ErrInvalidAmount},
		{"nan amount", func(tx *Transaction) { tx.Amount = math.NaN() }, ErrInvalidAmount},
		{"infinite amount", func(tx *Transaction) { tx.Amount = math.Inf(1) }, ErrInvalidAmount},
		{"blank description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroDate},
		{"no wallet", func(tx *Transaction) { tx.WalletID = "" }, ErrMissingWallet},
		{"expense without category", func(tx *Transaction) { tx.CategoryID = "" }, ErrMissingCategory},
		{"bad type", func(tx *Transaction) { tx.Type = "loan" }, ErrInvalidType},
		{
			"transfer without destination",
			func(tx *Transaction) { tx.Type = Transfer; tx.CategoryID = "" },
			ErrMissingDestination,
		},
		{
			"transfer needs no category",
			func(tx *Transaction) { tx.Type = Transfer; tx.CategoryID = ""; tx.TransferToWalletID = "w2" },
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTx()
			tt.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecurringRuleValidate(t *testing.T) {
	base := RecurringRule{
		ID:          "r1",
		Amount:      9.99,
		Description: "Streaming",
		CategoryID:  "exp5",
		WalletID:    "w1",
		Type:        Expense,
		Frequency:   Monthly,
		NextDueDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		OriginalDay: 31,
		Active:      true,
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*RecurringRule)
		wantErr error
	}{
		{"bad frequency", func(r *RecurringRule) { r.Frequency = "fortnightly" }, ErrInvalidFrequency},
		{"anchor day zero", func(r *RecurringRule) { r.OriginalDay = 0 }, ErrInvalidAnchorDay},
		{"anchor day 32", func(r *RecurringRule) { r.OriginalDay = 32 }, ErrInvalidAnchorDay},
		{"zero due date", func(r *RecurringRule) { r.NextDueDate = time.Time{} }, ErrZeroDate},
		{"no wallet", func(r *RecurringRule) { r.WalletID = "" }, ErrMissingWallet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29}, // leap year
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.March, 31},
		{2100, time.February, 28}, // century, not a leap year
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestMidnight(t *testing.T) {
	in := time.Date(2024, 4, 5, 23, 50, 12, 999, time.UTC)
	want := time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)
	if got := Midnight(in); !got.Equal(want) {
		t.Errorf("Midnight() = %v, want %v", got, want)
	}
}
