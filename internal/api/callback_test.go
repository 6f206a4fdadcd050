package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/eligiorbautista/drmlive/internal/domain"
)

func enableEncryption(t *testing.T, s *Server) {
	t.Helper()
	if err := s.store.SetEncryptionEnabled(context.Background(), true, "test"); err != nil {
		t.Fatalf("enable encryption: %v", err)
	}
}

func TestCallback_WidevineSoftware(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableEncryption(t, s)

	body := `{"asset":"live","drmScheme":"WIDEVINE_MODULAR","clientInfo":{"secLevel":"3"}}`
	rec := doRequest(t, s, http.MethodPost, "/api/callback", "application/json", body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var crt domain.CRT
	if err := json.Unmarshal(rec.Body.Bytes(), &crt); err != nil {
		t.Fatalf("unmarshal CRT: %v", err)
	}

	want := domain.OutputProtection{Digital: true, Analogue: true, Enforce: false, RequireHDCP: domain.HDCPNone}
	if crt.OutputProtection != want {
		t.Errorf("outputProtection = %+v, want %+v", crt.OutputProtection, want)
	}
	if crt.AssetID != "live" {
		t.Errorf("assetId = %q, want live", crt.AssetID)
	}
}

func TestCallback_FairPlayNoClientInfo(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableEncryption(t, s)

	rec := doRequest(t, s, http.MethodPost, "/api/callback", "application/json", `{"drmScheme":"FAIRPLAY"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var crt domain.CRT
	if err := json.Unmarshal(rec.Body.Bytes(), &crt); err != nil {
		t.Fatalf("unmarshal CRT: %v", err)
	}
	if !crt.OutputProtection.Enforce {
		t.Error("expected enforce=true for FairPlay")
	}
	if crt.OutputProtection.RequireHDCP != domain.HDCPNone {
		t.Errorf("requireHDCP = %s, want HDCP_NONE", crt.OutputProtection.RequireHDCP)
	}
}

func TestCallback_WidevineHardwareWithResolution(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableEncryption(t, s)

	body := `{
		"asset": "live",
		"drmScheme": "WIDEVINE_MODULAR",
		"clientInfo": {"secLevel": "1", "manufacturer": "Google", "model": "Pixel 8"},
		"requestMetadata": {"resolution": {"width": 3840, "height": 2160}}
	}`
	rec := doRequest(t, s, http.MethodPost, "/api/callback", "application/json", body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var crt domain.CRT
	if err := json.Unmarshal(rec.Body.Bytes(), &crt); err != nil {
		t.Fatalf("unmarshal CRT: %v", err)
	}
	if crt.OutputProtection.RequireHDCP != domain.HDCPV2 {
		t.Errorf("requireHDCP = %s, want HDCP_V2 for UHD L1", crt.OutputProtection.RequireHDCP)
	}
	if !crt.OutputProtection.Enforce {
		t.Error("expected enforce=true for L1")
	}
}

func TestCallback_MalformedBody(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableEncryption(t, s)

	rec := doRequest(t, s, http.MethodPost, "/api/callback", "application/json", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCallback_MissingScheme(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableEncryption(t, s)

	rec := doRequest(t, s, http.MethodPost, "/api/callback", "application/json", `{"asset":"live"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCallback_EncryptionDisabled(t *testing.T) {
	s, _, _ := newTestServer(t)

	body := `{"drmScheme":"WIDEVINE_MODULAR","clientInfo":{"secLevel":"3"}}`
	rec := doRequest(t, s, http.MethodPost, "/api/callback", "application/json", body, nil)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if resp.Error.Retryable {
		t.Error("authorization errors must not be retryable")
	}
}

// Unknown but well-formed schemes reach the policy table and get the
// default row rather than a rejection.
func TestCallback_UnknownScheme(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableEncryption(t, s)

	rec := doRequest(t, s, http.MethodPost, "/api/callback", "application/json", `{"drmScheme":"ACMEDRM"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var crt domain.CRT
	if err := json.Unmarshal(rec.Body.Bytes(), &crt); err != nil {
		t.Fatalf("unmarshal CRT: %v", err)
	}
	want := domain.OutputProtection{Digital: true, Analogue: true, Enforce: false, RequireHDCP: domain.HDCPNone}
	if crt.OutputProtection != want {
		t.Errorf("outputProtection = %+v, want default row %+v", crt.OutputProtection, want)
	}
}
