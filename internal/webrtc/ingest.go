package webrtc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/rtcp"
	pion "github.com/pion/webrtc/v4"
	"go.uber.org/zap"

	"github.com/eligiorbautista/drmlive/internal/domain"
)

// IngestSession is one WHIP publisher connection.
type IngestSession struct {
	id        string
	pc        *pion.PeerConnection
	broadcast *Broadcast
	events    domain.EventPublisher

	connected atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewIngest accepts a WHIP offer and returns the session plus the SDP
// answer. The session claims the broadcast publisher slot; a second
// concurrent publisher gets ErrPublisherBusy.
func NewIngest(ctx context.Context, api *pion.API, cfg pion.Configuration, broadcast *Broadcast, events domain.EventPublisher, offerSDP string) (*IngestSession, string, error) {
	if _, err := validateOffer(offerSDP); err != nil {
		return nil, "", err
	}

	pc, err := api.NewPeerConnection(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("create peer connection: %w", err)
	}

	s := &IngestSession{
		id:        uuid.NewString(),
		pc:        pc,
		broadcast: broadcast,
		events:    events,
		done:      make(chan struct{}),
	}

	if err := broadcast.AttachPublisher(s.id, s.writePLI); err != nil {
		pc.Close()
		return nil, "", err
	}

	for _, kind := range []pion.RTPCodecType{pion.RTPCodecTypeVideo, pion.RTPCodecTypeAudio} {
		if _, err := pc.AddTransceiverFromKind(kind, pion.RTPTransceiverInit{
			Direction: pion.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			s.Close()
			return nil, "", fmt.Errorf("add %s transceiver: %w", kind, err)
		}
	}

	pc.OnTrack(s.onTrack)
	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		zap.S().Infof("ingest %s: connection state %s", s.id, state)
		switch state {
		case pion.PeerConnectionStateConnected:
			s.connected.Store(true)
			events.Publish(domain.Event{Type: domain.EventStreamOnline})
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

// ID returns the WHIP resource id.
func (s *IngestSession) ID() string { return s.id }

// Done is closed when the session ends.
func (s *IngestSession) Done() <-chan struct{} { return s.done }

// Close tears the session down and releases the publisher slot. The offline
// event only fires for sessions that actually went online; a publisher whose
// SDP exchange failed never announced itself and stays silent.
func (s *IngestSession) Close() {
	s.closeOnce.Do(func() {
		s.broadcast.DetachPublisher(s.id)
		s.pc.Close()
		if s.connected.Load() {
			s.events.Publish(domain.Event{Type: domain.EventStreamOffline})
		}
		close(s.done)
	})
}

func (s *IngestSession) onTrack(track *pion.TrackRemote, _ *pion.RTPReceiver) {
	codec := track.Codec()
	zap.S().Infof("ingest %s: track kind=%s codec=%s", s.id, track.Kind(), codec.MimeType)

	write := s.broadcast.WriteAudio
	if track.Kind() == pion.RTPCodecTypeVideo {
		write = s.broadcast.WriteVideo
	}

	go func() {
		for {
			pkt, _, err := track.ReadRTP()
			if err != nil {
				zap.S().Debugf("ingest %s: %s track read: %v", s.id, track.Kind(), err)
				return
			}
			if err := write(pkt); err != nil {
				zap.S().Warnf("ingest %s: forward %s: %v", s.id, track.Kind(), err)
				return
			}
		}
	}()
}

// writePLI asks the publisher for a keyframe on behalf of a joining viewer.
func (s *IngestSession) writePLI() {
	for _, receiver := range s.pc.GetReceivers() {
		track := receiver.Track()
		if track == nil || track.Kind() != pion.RTPCodecTypeVideo {
			continue
		}
		pli := []rtcp.Packet{
			&rtcp.PictureLossIndication{MediaSSRC: uint32(track.SSRC())},
		}
		if err := s.pc.WriteRTCP(pli); err != nil {
			zap.S().Warnf("ingest %s: write PLI: %v", s.id, err)
		}
	}
}
