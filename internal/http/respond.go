package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bukocash/internal/core"
	"bukocash/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeDomainError maps store and domain errors onto status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrTransactionNotFound),
		errors.Is(err, store.ErrWalletNotFound),
		errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrRuleNotFound),
		errors.Is(err, store.ErrBudgetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrWalletInUse),
		errors.Is(err, store.ErrLastWallet),
		errors.Is(err, store.ErrCategoryInUse):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrMissingWallet),
		errors.Is(err, core.ErrMissingDestination),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrInvalidAnchorDay),
		errors.Is(err, core.ErrZeroDate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
