// Package metrics computes the read-only financial projections: safe to
// spend, health scores, monthly summaries, and the business profit view.
//
// Everything here is recomputed on demand from the current snapshot and
// never mutates state. Inputs are one user's personal history, so there is
// no caching.
package metrics

import (
	"time"

	"bukocash/internal/core"
)

// Health holds the month's spending health indicators. EfficiencyScore is
// the raw value and may be negative; clamp with EfficiencyDisplay for
// presentation.
type Health struct {
	BurnRate        float64
	AvgTransaction  float64
	EfficiencyScore float64
}

// MonthSummary aggregates one calendar month of transactions.
type MonthSummary struct {
	Income           float64
	Expenses         float64
	BusinessExpenses float64
	Count            int
}

// BusinessReport is the business-only profit view of a month.
type BusinessReport struct {
	TotalIncome      float64
	BusinessExpenses float64
	PersonalExpenses float64
	NetProfit        float64
	Margin           float64
}

// BudgetStatus compares a month's category spend against its budget.
type BudgetStatus struct {
	Budget   core.Budget
	Spent    float64
	Exceeded bool
}

// SafeToSpend is the current balance minus every active expense rule due on
// or before the end of the current calendar month.
func SafeToSpend(currentBalance float64, rules []core.RecurringRule, now time.Time) float64 {
	endOfMonth := core.EndOfMonth(now)

	pending := 0.0
	for _, rule := range rules {
		if !rule.Active || rule.Type != core.Expense {
			continue
		}
		if !core.Midnight(rule.NextDueDate).After(endOfMonth) {
			pending = core.Sanitize(pending + rule.Amount)
		}
	}
	return core.Sanitize(currentBalance - pending)
}

// Summarize aggregates the transactions falling in now's calendar month.
func Summarize(transactions []core.Transaction, now time.Time) MonthSummary {
	var s MonthSummary
	for _, tx := range transactions {
		if !core.SameMonth(tx.Date, now) {
			continue
		}
		s.Count++
		switch tx.Type {
		case core.Income:
			s.Income = core.Sanitize(s.Income + tx.Amount)
		case core.Expense:
			s.Expenses = core.Sanitize(s.Expenses + tx.Amount)
			if tx.IsBusiness {
				s.BusinessExpenses = core.Sanitize(s.BusinessExpenses + tx.Amount)
			}
		}
	}
	return s
}

// HealthMetrics computes burn rate, average transaction size, and the raw
// efficiency score for now's calendar month.
func HealthMetrics(transactions []core.Transaction, now time.Time) Health {
	s := Summarize(transactions, now)

	var h Health
	if s.Income > 0 {
		h.BurnRate = (s.Expenses / s.Income) * 100
		h.EfficiencyScore = ((s.Income - s.Expenses) / s.Income) * 100
	}
	if s.Count > 0 {
		h.AvgTransaction = s.Expenses / float64(s.Count)
	}
	return h
}

// EfficiencyDisplay clamps the raw efficiency score to [0, 100] for
// presentation. The raw value stays authoritative.
func EfficiencyDisplay(raw float64) float64 {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}

// Business computes the business-only profit view for now's calendar month:
// net profit is total income minus business expenses, margin its share of
// income.
func Business(transactions []core.Transaction, now time.Time) BusinessReport {
	var r BusinessReport
	for _, tx := range transactions {
		if !core.SameMonth(tx.Date, now) {
			continue
		}
		switch {
		case tx.Type == core.Income:
			r.TotalIncome = core.Sanitize(r.TotalIncome + tx.Amount)
		case tx.Type == core.Expense && tx.IsBusiness:
			r.BusinessExpenses = core.Sanitize(r.BusinessExpenses + tx.Amount)
		case tx.Type == core.Expense:
			r.PersonalExpenses = core.Sanitize(r.PersonalExpenses + tx.Amount)
		}
	}
	r.NetProfit = core.Sanitize(r.TotalIncome - r.BusinessExpenses)
	if r.TotalIncome > 0 {
		r.Margin = (r.NetProfit / r.TotalIncome) * 100
	}
	return r
}

// BudgetReport computes each budget's spend for now's calendar month.
// Exceeded is decided on sanitized values.
func BudgetReport(budgets []core.Budget, transactions []core.Transaction, now time.Time) []BudgetStatus {
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := 0.0
		for _, tx := range transactions {
			if tx.Type != core.Expense || tx.CategoryID != b.CategoryID {
				continue
			}
			if core.SameMonth(tx.Date, now) {
				spent = core.Sanitize(spent + tx.Amount)
			}
		}
		statuses = append(statuses, BudgetStatus{
			Budget:   b,
			Spent:    spent,
			Exceeded: spent > core.Sanitize(b.Amount),
		})
	}
	return statuses
}
