package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/eligiorbautista/drmlive/internal/config"
	"github.com/eligiorbautista/drmlive/internal/domain"
	"github.com/eligiorbautista/drmlive/internal/settings"
	"github.com/eligiorbautista/drmlive/internal/webrtc"
)

// fakeEvents records published events.
type fakeEvents struct {
	mu     sync.Mutex
	events []domain.Event
}

func (f *fakeEvents) Publish(event domain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEvents) byType(eventType string) []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestServer(t *testing.T) (*Server, *settings.MemoryStore, *fakeEvents) {
	t.Helper()

	rtc, err := webrtc.NewAPI()
	if err != nil {
		t.Fatalf("NewAPI: %v", err)
	}
	broadcast, err := webrtc.NewBroadcast()
	if err != nil {
		t.Fatalf("NewBroadcast: %v", err)
	}

	cfg := &config.Config{
		AdminToken: "test-admin-token",
		DRM: config.DRM{
			Merchant:    "demo-merchant",
			Environment: "Staging",
			KeyID:       "9eb4050de44b4802932e27d75083e266",
			IV:          "a42f23bcfd8b4a22",
			AssetID:     "live",
		},
	}

	store := settings.NewMemoryStore()
	events := &fakeEvents{}
	return NewServer(cfg, store, events, nil, broadcast, rtc), store, events
}

func doRequest(t *testing.T, s *Server, method, target, contentType, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
