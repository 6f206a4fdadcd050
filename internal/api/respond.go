package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/eligiorbautista/drmlive/internal/domain"
)

// Error codes returned in the error envelope.
const (
	codeValidation   = "validation_failed"
	codeUnauthorized = "unauthorized"
	codeCapability   = "capability_unsupported"
	codeConflict     = "conflict"
	codeNotFound     = "not_found"
	codeInternal     = "internal"
)

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: errorPayload{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}})
}

// writeDomainError maps the error taxonomy to HTTP: capability errors are
// 422 (terminal for this client), authorization 403, validation 400,
// anything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var capErr *domain.CapabilityError
	if errors.As(err, &capErr) {
		writeError(w, http.StatusUnprocessableEntity, codeCapability, capErr.Error(), false)
		return
	}

	var authErr *domain.AuthorizationError
	if errors.As(err, &authErr) {
		writeError(w, http.StatusForbidden, codeUnauthorized, authErr.Error(), false)
		return
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		writeError(w, http.StatusBadRequest, codeValidation, valErr.Error(), false)
		return
	}

	zap.S().Errorf("api: internal error: %v", err)
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error", domain.Retryable(err))
}
