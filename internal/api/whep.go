package api

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/eligiorbautista/drmlive/internal/webrtc"
)

// handleWHEPSubscribe accepts a WHEP viewer offer and attaches the viewer
// to the broadcast. Viewers may connect before a publisher; they get media
// once one arrives.
func (s *Server) handleWHEPSubscribe(w http.ResponseWriter, r *http.Request) {
	offer, ok := readOffer(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), iceGatherTimeout)
	defer cancel()

	sess, answer, err := webrtc.NewViewer(ctx, s.rtc, s.peerCfg, s.broadcast, offer)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.mu.Lock()
	s.viewers[sess.ID()] = sess
	s.mu.Unlock()
	go s.reapViewer(sess)

	zap.S().Infow("whep: viewer connected", "id", sess.ID(), "live", s.broadcast.Live())

	w.Header().Set("Content-Type", "application/sdp")
	w.Header().Set("Location", "/api/whep/"+sess.ID())
	w.WriteHeader(http.StatusCreated)
	io.WriteString(w, answer)
}

// handleWHEPDelete ends a viewer session.
func (s *Server) handleWHEPDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	sess, ok := s.viewers[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "unknown session", false)
		return
	}

	sess.Close()
	zap.S().Infow("whep: viewer disconnected", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reapViewer(sess *webrtc.ViewerSession) {
	<-sess.Done()
	s.mu.Lock()
	delete(s.viewers, sess.ID())
	s.mu.Unlock()
}
