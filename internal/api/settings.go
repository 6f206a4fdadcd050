package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eligiorbautista/drmlive/internal/domain"
)

type encryptionState struct {
	Enabled bool `json:"enabled"`
}

// handleEncryptionEnabled reports the encryption flag. Public: players poll
// this before deciding whether to configure the DRM transform.
func (s *Server) handleEncryptionEnabled(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.store.EncryptionEnabled(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encryptionState{Enabled: enabled})
}

// handleSetEncryption toggles the encryption flag. Admin only.
func (s *Server) handleSetEncryption(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing or invalid admin token", false)
		return
	}

	var req encryptionState
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, &domain.ValidationError{Reason: "malformed body"})
		return
	}

	if err := s.store.SetEncryptionEnabled(r.Context(), req.Enabled, "admin"); err != nil {
		writeDomainError(w, err)
		return
	}

	zap.S().Infow("settings: encryption toggled", "enabled", req.Enabled)
	s.events.Publish(domain.Event{
		Type: domain.EventSettingsChanged,
		Data: encryptionState{Enabled: req.Enabled},
	})

	writeJSON(w, http.StatusOK, encryptionState{Enabled: req.Enabled})
}

func (s *Server) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	return ok && token != "" && token == s.cfg.AdminToken
}
