package webrtc

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pion/rtp"
	pion "github.com/pion/webrtc/v4"
	"go.uber.org/zap"
)

// ErrPublisherBusy is returned when a second WHIP session arrives while a
// publisher is live.
var ErrPublisherBusy = errors.New("a publisher is already connected")

// PLI re-request pacing while viewers wait for a keyframe. Vars, overridden
// in tests.
var (
	keyframeRetryInterval = 500 * time.Millisecond
	keyframeRetryLimit    = 6
)

// Broadcast is the fan-out hub between the single WHIP publisher and any
// number of WHEP viewers. The local tracks exist for the lifetime of the
// server; viewers attach to them and the publisher writes through them.
type Broadcast struct {
	video *pion.TrackLocalStaticRTP
	audio *pion.TrackLocalStaticRTP

	mu               sync.Mutex
	publisherID      string
	requestPLI       func()
	keyframeSeen     bool
	awaitingKeyframe bool
}

// NewBroadcast creates the hub with its shared video and audio tracks.
func NewBroadcast() (*Broadcast, error) {
	video, err := pion.NewTrackLocalStaticRTP(pion.RTPCodecCapability{
		MimeType:  pion.MimeTypeH264,
		ClockRate: 90000,
	}, "video", "broadcast")
	if err != nil {
		return nil, fmt.Errorf("create video track: %w", err)
	}

	audio, err := pion.NewTrackLocalStaticRTP(pion.RTPCodecCapability{
		MimeType:  pion.MimeTypeOpus,
		ClockRate: 48000,
		Channels:  2,
	}, "audio", "broadcast")
	if err != nil {
		return nil, fmt.Errorf("create audio track: %w", err)
	}

	return &Broadcast{video: video, audio: audio}, nil
}

// VideoTrack returns the shared video track viewers subscribe to.
func (b *Broadcast) VideoTrack() *pion.TrackLocalStaticRTP { return b.video }

// AudioTrack returns the shared audio track viewers subscribe to.
func (b *Broadcast) AudioTrack() *pion.TrackLocalStaticRTP { return b.audio }

// AttachPublisher claims the publisher slot. requestPLI is invoked whenever
// a new viewer needs a keyframe to start decoding. Viewers that connected
// while the slot was empty get their keyframe request replayed immediately.
func (b *Broadcast) AttachPublisher(id string, requestPLI func()) error {
	b.mu.Lock()
	if b.publisherID != "" {
		b.mu.Unlock()
		return ErrPublisherBusy
	}
	b.publisherID = id
	b.requestPLI = requestPLI
	b.keyframeSeen = false
	waiting := b.awaitingKeyframe
	b.mu.Unlock()

	if waiting {
		requestPLI()
		go b.nudgeKeyframe(id)
	}
	return nil
}

// DetachPublisher releases the slot if id still owns it.
func (b *Broadcast) DetachPublisher(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publisherID == id {
		b.publisherID = ""
		b.requestPLI = nil
	}
}

// Live reports whether a publisher is attached.
func (b *Broadcast) Live() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.publisherID != ""
}

// RequestKeyframe asks the current publisher for a PLI on behalf of a new
// viewer and keeps re-asking, bounded, until a keyframe shows up in the
// video stream. When no publisher is attached the request is remembered and
// replayed by AttachPublisher.
func (b *Broadcast) RequestKeyframe() {
	b.mu.Lock()
	b.keyframeSeen = false
	alreadyWaiting := b.awaitingKeyframe
	b.awaitingKeyframe = true
	id := b.publisherID
	pli := b.requestPLI
	b.mu.Unlock()

	if pli == nil {
		return
	}
	pli()
	if !alreadyWaiting {
		go b.nudgeKeyframe(id)
	}
}

// nudgeKeyframe re-issues PLI at a bounded pace until a keyframe arrives,
// the waiting viewers are served, or the publisher changes.
func (b *Broadcast) nudgeKeyframe(publisherID string) {
	for i := 0; i < keyframeRetryLimit; i++ {
		time.Sleep(keyframeRetryInterval)

		b.mu.Lock()
		if b.keyframeSeen || !b.awaitingKeyframe || b.publisherID != publisherID {
			b.mu.Unlock()
			return
		}
		pli := b.requestPLI
		b.mu.Unlock()
		pli()
	}

	b.mu.Lock()
	b.awaitingKeyframe = false
	b.mu.Unlock()
	zap.S().Warn("broadcast: gave up waiting for a keyframe from the publisher")
}

// WriteVideo forwards one video RTP packet to all viewers. ErrClosedPipe
// from the local track means no viewer is attached yet and is not an error.
func (b *Broadcast) WriteVideo(pkt *rtp.Packet) error {
	b.mu.Lock()
	if IsKeyframe(pkt.Payload) {
		if !b.keyframeSeen {
			b.keyframeSeen = true
			zap.S().Debug("broadcast: keyframe reached the viewers")
		}
		b.awaitingKeyframe = false
	}
	b.mu.Unlock()

	if err := b.video.WriteRTP(pkt); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("write video: %w", err)
	}
	return nil
}

// WriteAudio forwards one audio RTP packet to all viewers.
func (b *Broadcast) WriteAudio(pkt *rtp.Packet) error {
	if err := b.audio.WriteRTP(pkt); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}
