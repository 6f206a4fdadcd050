// Package api exposes the HTTP surface: the DRMtoday authorization
// callback, the player-facing DRM config and settings endpoints, WHIP/WHEP
// SDP exchange, and the events socket.
package api

import (
	"net/http"
	"sync"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/eligiorbautista/drmlive/internal/config"
	"github.com/eligiorbautista/drmlive/internal/domain"
	"github.com/eligiorbautista/drmlive/internal/webrtc"
)

// iceGatherTimeout caps how long an SDP exchange may wait for candidates.
const iceGatherTimeout = 10 * time.Second

// Server wires the HTTP handlers to their collaborators. All dependencies
// are injected; the server holds no global state.
type Server struct {
	cfg       *config.Config
	store     domain.SettingsStore
	events    domain.EventPublisher
	eventsWS  http.Handler
	broadcast *webrtc.Broadcast
	rtc       *pion.API
	peerCfg   pion.Configuration

	mu      sync.Mutex
	ingests map[string]*webrtc.IngestSession
	viewers map[string]*webrtc.ViewerSession
}

// NewServer creates the Server. eventsWS handles GET /api/events upgrades
// and events is the publisher side of the same hub.
func NewServer(cfg *config.Config, store domain.SettingsStore, events domain.EventPublisher, eventsWS http.Handler, broadcast *webrtc.Broadcast, rtc *pion.API) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		events:    events,
		eventsWS:  eventsWS,
		broadcast: broadcast,
		rtc:       rtc,
		peerCfg:   webrtc.PeerConfiguration(cfg.STUNServer),
		ingests:   make(map[string]*webrtc.IngestSession),
		viewers:   make(map[string]*webrtc.ViewerSession),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/callback", s.handleCallback)
	mux.HandleFunc("GET /api/settings/encryption/enabled", s.handleEncryptionEnabled)
	mux.HandleFunc("PUT /api/settings/encryption", s.handleSetEncryption)
	mux.HandleFunc("GET /api/drm/config", s.handleDRMConfig)

	mux.HandleFunc("POST /api/whip", s.handleWHIPPublish)
	mux.HandleFunc("PATCH /api/whip/{id}", s.handleTricklePatch)
	mux.HandleFunc("DELETE /api/whip/{id}", s.handleWHIPDelete)
	mux.HandleFunc("POST /api/whep", s.handleWHEPSubscribe)
	mux.HandleFunc("PATCH /api/whep/{id}", s.handleTricklePatch)
	mux.HandleFunc("DELETE /api/whep/{id}", s.handleWHEPDelete)

	if s.eventsWS != nil {
		mux.Handle("GET /api/events", s.eventsWS)
	}

	return mux
}

// Close tears down all live sessions.
func (s *Server) Close() {
	s.mu.Lock()
	ingests := make([]*webrtc.IngestSession, 0, len(s.ingests))
	for _, sess := range s.ingests {
		ingests = append(ingests, sess)
	}
	viewers := make([]*webrtc.ViewerSession, 0, len(s.viewers))
	for _, sess := range s.viewers {
		viewers = append(viewers, sess)
	}
	s.mu.Unlock()

	for _, sess := range ingests {
		sess.Close()
	}
	for _, sess := range viewers {
		sess.Close()
	}
}
