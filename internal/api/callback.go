package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/eligiorbautista/drmlive/internal/domain"
	"github.com/eligiorbautista/drmlive/internal/drm"
)

// maxCallbackBody caps the DRMtoday callback body size.
const maxCallbackBody = 1 << 20

// handleCallback answers DRMtoday's authorization callback with a CRT.
// Malformed bodies are rejected before the policy table is consulted;
// unknown but well-formed schemes fall through to the table's default row.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	var req domain.CallbackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCallbackBody))
	if err := dec.Decode(&req); err != nil {
		writeDomainError(w, &domain.ValidationError{Reason: "malformed callback body"})
		return
	}
	if req.DRMScheme == "" {
		writeDomainError(w, &domain.ValidationError{Field: "drmScheme", Reason: "missing"})
		return
	}

	enabled, err := s.store.EncryptionEnabled(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !enabled {
		writeDomainError(w, &domain.AuthorizationError{Reason: "encryption is disabled"})
		return
	}

	if !req.DRMScheme.Known() {
		zap.S().Warnw("callback: unrecognized drm scheme, default protection row applies",
			"scheme", req.DRMScheme,
		)
	}

	crt := drm.BuildCRT(req, drm.Options{AssetID: s.cfg.DRM.AssetID})

	zap.S().Infow("callback: issuing CRT",
		"scheme", req.DRMScheme,
		"secLevel", req.ClientInfo.SecLevel,
		"session", req.Session,
		"requireHDCP", crt.OutputProtection.RequireHDCP,
		"enforce", crt.OutputProtection.Enforce,
	)

	writeJSON(w, http.StatusOK, crt)
}
