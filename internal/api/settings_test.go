package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/eligiorbautista/drmlive/internal/domain"
)

func TestSettings_DefaultDisabled(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/settings/encryption/enabled", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var state encryptionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.Enabled {
		t.Error("expected encryption disabled by default")
	}
}

func TestSettings_ToggleRequiresAuth(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/settings/encryption", "application/json", `{"enabled":true}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	header := http.Header{"Authorization": []string{"Bearer wrong-token"}}
	rec = doRequest(t, s, http.MethodPut, "/api/settings/encryption", "application/json", `{"enabled":true}`, header)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}
}

func TestSettings_ToggleReadAfterWrite(t *testing.T) {
	s, _, events := newTestServer(t)
	header := http.Header{"Authorization": []string{"Bearer test-admin-token"}}

	rec := doRequest(t, s, http.MethodPut, "/api/settings/encryption", "application/json", `{"enabled":true}`, header)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/settings/encryption/enabled", "", "", nil)
	var state encryptionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !state.Enabled {
		t.Error("expected read to reflect the admin write")
	}

	if got := events.byType(domain.EventSettingsChanged); len(got) != 1 {
		t.Errorf("settings.changed events = %d, want 1", len(got))
	}

	rec = doRequest(t, s, http.MethodPut, "/api/settings/encryption", "application/json", `{"enabled":false}`, header)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle off: status = %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodGet, "/api/settings/encryption/enabled", "", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.Enabled {
		t.Error("expected read to reflect the toggle back off")
	}
}
