package webrtc

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	pion "github.com/pion/webrtc/v4"
	"go.uber.org/zap"
)

// ViewerSession is one WHEP subscriber connection.
type ViewerSession struct {
	id        string
	pc        *pion.PeerConnection
	broadcast *Broadcast

	closeOnce sync.Once
	done      chan struct{}
}

// NewViewer accepts a WHEP offer and returns the session plus the SDP
// answer. The viewer is attached to the broadcast tracks; once connected a
// PLI is requested from the publisher so decoding can start at the next
// keyframe.
func NewViewer(ctx context.Context, api *pion.API, cfg pion.Configuration, broadcast *Broadcast, offerSDP string) (*ViewerSession, string, error) {
	if _, err := validateOffer(offerSDP); err != nil {
		return nil, "", err
	}

	pc, err := api.NewPeerConnection(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("create peer connection: %w", err)
	}

	s := &ViewerSession{
		id:        uuid.NewString(),
		pc:        pc,
		broadcast: broadcast,
		done:      make(chan struct{}),
	}

	for _, track := range []*pion.TrackLocalStaticRTP{broadcast.VideoTrack(), broadcast.AudioTrack()} {
		sender, err := pc.AddTrack(track)
		if err != nil {
			pc.Close()
			return nil, "", fmt.Errorf("add %s track: %w", track.Kind(), err)
		}
		go drainRTCP(sender)
	}

	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		zap.S().Infof("viewer %s: connection state %s", s.id, state)
		switch state {
		case pion.PeerConnectionStateConnected:
			broadcast.RequestKeyframe()
		case pion.PeerConnectionStateDisconnected, pion.PeerConnectionStateFailed, pion.PeerConnectionStateClosed:
			s.Close()
		}
	})

	answer, err := answerOffer(ctx, pc, offerSDP)
	if err != nil {
		s.Close()
		return nil, "", err
	}

	return s, answer, nil
}

// ID returns the WHEP resource id.
func (s *ViewerSession) ID() string { return s.id }

// Done is closed when the session ends.
func (s *ViewerSession) Done() <-chan struct{} { return s.done }

// Close tears the viewer connection down.
func (s *ViewerSession) Close() {
	s.closeOnce.Do(func() {
		s.pc.Close()
		close(s.done)
	})
}

// drainRTCP consumes reports from the sender so interceptors keep running.
func drainRTCP(sender *pion.RTPSender) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := sender.Read(buf); err != nil {
			return
		}
	}
}
