package http

import (
	"net/http"

	"bukocash/internal/metrics"
)

type budgetStatusJSON struct {
	Budget   budgetJSON `json:"budget"`
	Spent    float64    `json:"spent"`
	Exceeded bool       `json:"exceeded"`
}

type metricsJSON struct {
	TotalBalance    float64 `json:"totalBalance"`
	SafeToSpend     float64 `json:"safeToSpend"`
	BurnRate        float64 `json:"burnRate"`
	AvgTransaction  float64 `json:"avgTransaction"`
	EfficiencyScore float64 `json:"efficiencyScore"`

	Business struct {
		TotalIncome      float64 `json:"totalIncome"`
		BusinessExpenses float64 `json:"businessExpenses"`
		PersonalExpenses float64 `json:"personalExpenses"`
		NetProfit        float64 `json:"netProfit"`
		Margin           float64 `json:"margin"`
	} `json:"business"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	health := s.store.Health()
	business := s.store.BusinessReport()

	var out metricsJSON
	out.TotalBalance = snap.TotalBalance()
	out.SafeToSpend = s.store.SafeToSpend()
	out.BurnRate = health.BurnRate
	out.AvgTransaction = health.AvgTransaction
	out.EfficiencyScore = metrics.EfficiencyDisplay(health.EfficiencyScore)
	out.Business.TotalIncome = business.TotalIncome
	out.Business.BusinessExpenses = business.BusinessExpenses
	out.Business.PersonalExpenses = business.PersonalExpenses
	out.Business.NetProfit = business.NetProfit
	out.Business.Margin = business.Margin

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	report := s.store.BudgetReport()
	out := make([]budgetStatusJSON, len(report))
	for i, status := range report {
		out[i] = budgetStatusJSON{
			Budget:   budgetToJSON(status.Budget),
			Spent:    status.Spent,
			Exceeded: status.Exceeded,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var payload budgetJSON
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	budget, err := s.store.SetBudget(r.Context(), payload.CategoryID, payload.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetToJSON(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
