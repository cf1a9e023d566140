package http

import (
	"net/http"

	"bukocash/internal/core"
)

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, walletsToJSON(snap.Wallets))
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var payload walletJSON
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := s.store.AddWallet(r.Context(), payload.toCore())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, walletToJSON(created))
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload walletJSON
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	updated, err := s.store.UpdateWallet(r.Context(), id,
		payload.Name, payload.Currency, core.WalletKind(payload.Kind))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, walletToJSON(updated))
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWallet(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
