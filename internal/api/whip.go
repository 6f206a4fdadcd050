package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/eligiorbautista/drmlive/internal/webrtc"
)

// maxSDPBody caps WHIP/WHEP offer bodies.
const maxSDPBody = 1 << 20

// readOffer validates the content type and reads the SDP offer body.
func readOffer(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Header.Get("Content-Type") != "application/sdp" {
		writeError(w, http.StatusUnsupportedMediaType, codeValidation, "expected application/sdp", false)
		return "", false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSDPBody))
	if err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, codeValidation, "empty or unreadable offer", false)
		return "", false
	}
	return string(body), true
}

// handleWHIPPublish accepts a WHIP publisher offer. One publisher at a
// time; a second gets 409.
func (s *Server) handleWHIPPublish(w http.ResponseWriter, r *http.Request) {
	offer, ok := readOffer(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), iceGatherTimeout)
	defer cancel()

	sess, answer, err := webrtc.NewIngest(ctx, s.rtc, s.peerCfg, s.broadcast, s.events, offer)
	if err != nil {
		if errors.Is(err, webrtc.ErrPublisherBusy) {
			writeError(w, http.StatusConflict, codeConflict, err.Error(), true)
			return
		}
		writeDomainError(w, err)
		return
	}

	s.mu.Lock()
	s.ingests[sess.ID()] = sess
	s.mu.Unlock()
	go s.reapIngest(sess)

	zap.S().Infow("whip: publisher connected", "id", sess.ID())

	w.Header().Set("Content-Type", "application/sdp")
	w.Header().Set("Location", "/api/whip/"+sess.ID())
	w.WriteHeader(http.StatusCreated)
	io.WriteString(w, answer)
}

// handleWHIPDelete ends a publisher session.
func (s *Server) handleWHIPDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	sess, ok := s.ingests[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "unknown session", false)
		return
	}

	sess.Close()
	zap.S().Infow("whip: publisher disconnected", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleTricklePatch rejects trickle-ICE updates: answers carry the full
// candidate set, so there is nothing to patch.
func (s *Server) handleTricklePatch(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, codeValidation, "trickle ICE is not supported", false)
}

func (s *Server) reapIngest(sess *webrtc.IngestSession) {
	<-sess.Done()
	s.mu.Lock()
	delete(s.ingests, sess.ID())
	s.mu.Unlock()
}
