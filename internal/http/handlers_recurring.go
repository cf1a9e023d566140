package http

import "net/http"

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, rulesToJSON(snap.RecurringRules))
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var payload ruleJSON
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rule, err := payload.toCore()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.AddRecurringRule(r.Context(), rule)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ruleToJSON(created))
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRecurringRule(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleConfirmRule(w http.ResponseWriter, r *http.Request) {
	tx, err := s.store.ConfirmRecurring(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionToJSON(tx))
}

func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	generated := s.store.ProcessRecurring(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"generated": generated})
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	rules := s.store.Upcoming(s.lookaheadDays)
	writeJSON(w, http.StatusOK, rulesToJSON(rules))
}
