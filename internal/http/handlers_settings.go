package http

import (
	"net/http"
	"time"
)

type settingsJSON struct {
	HasOnboarded      bool   `json:"hasOnboarded"`
	PINSet            bool   `json:"pinSet"`
	BiometricsEnabled bool   `json:"biometricsEnabled"`
	UserID            string `json:"userId,omitempty"`
}

// settingsPatch uses pointers so absent fields stay untouched.
type settingsPatch struct {
	HasOnboarded      *bool   `json:"hasOnboarded,omitempty"`
	SecurityPIN       *string `json:"securityPin,omitempty"`
	BiometricsEnabled *bool   `json:"biometricsEnabled,omitempty"`
	UserID            *string `json:"userId,omitempty"`
	Online            *bool   `json:"online,omitempty"`
}

type syncStatusJSON struct {
	Version    int64  `json:"version"`
	LastSynced string `json:"lastSynced,omitempty"`
	Online     bool   `json:"online"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, settingsJSON{
		HasOnboarded:      snap.HasOnboarded,
		PINSet:            snap.SecurityPIN != "",
		BiometricsEnabled: snap.BiometricsEnabled,
		UserID:            snap.UserID,
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctx := r.Context()
	if patch.HasOnboarded != nil {
		s.store.SetOnboarded(ctx, *patch.HasOnboarded)
	}
	if patch.SecurityPIN != nil {
		s.store.SetSecurityPIN(ctx, *patch.SecurityPIN)
	}
	if patch.BiometricsEnabled != nil {
		s.store.SetBiometricsEnabled(ctx, *patch.BiometricsEnabled)
	}
	if patch.UserID != nil {
		s.store.SetUser(ctx, *patch.UserID)
	}
	if patch.Online != nil && s.syncStatus != nil {
		s.syncStatus.SetOnline(*patch.Online)
	}

	s.handleGetSettings(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.store.Reset(r.Context())
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	status := syncStatusJSON{
		Version: snap.Version,
		Online:  s.syncStatus != nil && s.syncStatus.IsOnline(),
	}
	if !snap.LastSynced.IsZero() {
		status.LastSynced = snap.LastSynced.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, status)
}
