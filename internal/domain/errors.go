package domain

import "fmt"

// CapabilityError reports that no supported key system is available on the
// client (no probe succeeded, or EME is blocked entirely, e.g. a cross-origin
// iframe without allow="encrypted-media"). It is terminal for the playback
// session: the user must switch browser, device, or embed permissions.
type CapabilityError struct {
	Reason string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("drm capability: %s", e.Reason)
}

// Retryable always returns false for capability errors.
func (e *CapabilityError) Retryable() bool { return false }

// AuthorizationError reports that a license request was refused, either
// because encryption is disabled or because the upstream DRM dashboard is
// misconfigured. Not retryable by the client.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("drm unauthorized: %s", e.Reason)
}

// Retryable always returns false for authorization errors.
func (e *AuthorizationError) Retryable() bool { return false }

// ValidationError reports a malformed request body or parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid request: %s", e.Reason)
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// Retryable reports whether retrying the operation could succeed.
// Errors that don't implement the interface are treated as retryable
// (transient by default).
func Retryable(err error) bool {
	type retryable interface{ Retryable() bool }
	if r, ok := err.(retryable); ok {
		return r.Retryable()
	}
	return true
}
