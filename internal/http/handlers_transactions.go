package http

import (
	"net/http"
	"strconv"

	"bukocash/internal/export"
	applog "bukocash/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, transactionsToJSON(snap.Transactions))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionJSON
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tx, err := payload.toCore()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.AddTransaction(r.Context(), tx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionToJSON(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload transactionJSON
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tx, err := payload.toCore()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.UpdateTransaction(r.Context(), id, tx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionToJSON(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()

	// Snapshot versions are monotonic, so the version is a complete cache key.
	key := strconv.FormatInt(snap.Version, 10)
	doc, ok := s.exportCache.Get(key)
	if !ok {
		doc = export.CSV(snap.Transactions, snap.Wallets, snap.Categories)
		s.exportCache.Set(key, doc)
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Export rendered",
		applog.FieldVersion, snap.Version, "cached", ok)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="movimientos.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
