// Package scheduler implements the recurring obligation engine: advancing a
// rule's due date with calendar-correct month and leap-year handling, and
// catching up overdue autopay rules deterministically across arbitrary
// elapsed time.
package scheduler

import (
	"time"

	"bukocash/internal/core"
	"bukocash/internal/ledger"
)

// CatchUpCap bounds the number of occurrences a single catch-up invocation
// may generate per rule. A rule left dormant for years stops at the cap and
// finishes on later invocations; catch-up is safe to call repeatedly.
const CatchUpCap = 12

// AutoSuffix marks transactions generated by catch-up rather than entered
// by hand.
const AutoSuffix = " (Auto)"

// DefaultLookaheadDays is the reminder window used when the caller does not
// supply one.
const DefaultLookaheadDays = 7

// Advance returns the rule's next due date one frequency step after date.
//
// Monthly and yearly steps clamp the day to min(originalDay, days in the
// target month) without ever lowering the anchor itself: a rule pinned to
// the 31st pays on Feb 29 and is back on Mar 31, instead of drifting down
// permanently after the first short month.
func Advance(date time.Time, frequency core.Frequency, originalDay int) time.Time {
	date = core.Midnight(date)
	switch frequency {
	case core.Daily:
		return date.AddDate(0, 0, 1)
	case core.Weekly:
		return date.AddDate(0, 0, 7)
	case core.Monthly:
		return anchoredDate(date.Year(), date.Month()+1, originalDay)
	case core.Yearly:
		return anchoredDate(date.Year()+1, date.Month(), originalDay)
	}
	return date
}

// anchoredDate builds a date in the given (normalized) month with the day
// clamped to the anchor or the month's length, whichever is smaller.
func anchoredDate(year int, month time.Month, originalDay int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	day := originalDay
	if last := core.DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Result is the outcome of one catch-up invocation.
type Result struct {
	Rules        []core.RecurringRule
	Wallets      []core.Wallet
	Transactions []core.Transaction
	// Generated is the number of occurrences produced, bounded by
	// CatchUpCap per rule.
	Generated int
}

// CatchUp processes every active autopay rule whose due date is on or
// before today, generating one backdated transaction per missed occurrence
// and applying it to the wallet set. Each generation strictly advances the
// rule's due date, so once it is in the future nothing further is produced
// and the call is idempotent.
//
// Non-autopay rules are never touched here; they wait for Confirm.
func CatchUp(rules []core.RecurringRule, wallets []core.Wallet, today time.Time, newID func() string) Result {
	today = core.Midnight(today)

	out := Result{
		Rules:   make([]core.RecurringRule, len(rules)),
		Wallets: wallets,
	}

	for i, rule := range rules {
		if !rule.Active || !rule.AutoPay {
			out.Rules[i] = rule
			continue
		}

		nextDue := core.Midnight(rule.NextDueDate)
		iterations := 0

		for !nextDue.After(today) && iterations < CatchUpCap {
			iterations++
			tx := occurrence(rule, newID())
			tx.Date = nextDue
			tx.Description = rule.Description + AutoSuffix

			out.Transactions = append(out.Transactions, tx)
			out.Wallets = ledger.Apply(out.Wallets, tx)
			nextDue = Advance(nextDue, rule.Frequency, rule.OriginalDay)
		}

		if iterations > 0 {
			rule.NextDueDate = nextDue
			out.Generated += iterations
		}
		out.Rules[i] = rule
	}

	return out
}

// Confirm generates exactly one occurrence of a rule, dated now, and
// advances the due date a single frequency step from its prior value. There
// is no backlog processing: however overdue the rule was, one confirmation
// moves it exactly one step forward.
func Confirm(rule core.RecurringRule, now time.Time, newID func() string) (core.RecurringRule, core.Transaction) {
	tx := occurrence(rule, newID())
	tx.Date = now
	rule.NextDueDate = Advance(rule.NextDueDate, rule.Frequency, rule.OriginalDay)
	return rule, tx
}

// Upcoming returns the active rules due within lookaheadDays of today,
// overdue ones included, sorted ascending by due date. It is a read-only
// reminder query and never advances any rule.
func Upcoming(rules []core.RecurringRule, today time.Time, lookaheadDays int) []core.RecurringRule {
	limit := core.Midnight(today).AddDate(0, 0, lookaheadDays)

	var due []core.RecurringRule
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if !core.Midnight(rule.NextDueDate).After(limit) {
			due = append(due, rule)
		}
	}

	// Insertion sort: rule sets are a user's handful of obligations.
	for i := 1; i < len(due); i++ {
		for j := i; j > 0 && due[j].NextDueDate.Before(due[j-1].NextDueDate); j-- {
			due[j], due[j-1] = due[j-1], due[j]
		}
	}
	return due
}

func occurrence(rule core.RecurringRule, id string) core.Transaction {
	return core.Transaction{
		ID:                 id,
		Amount:             rule.Amount,
		Description:        rule.Description,
		CategoryID:         rule.CategoryID,
		WalletID:           rule.WalletID,
		TransferToWalletID: rule.TransferToWalletID,
		Type:               rule.Type,
		IsBusiness:         rule.IsBusiness,
		IsRecurring:        true,
	}
}
