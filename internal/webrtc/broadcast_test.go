package webrtc

import (
	"sync"
	"testing"
	"time"

	"github.com/pion/rtp"
)

// keyframePacket is an H264 IDR payload, enough for IsKeyframe.
func keyframePacket() *rtp.Packet {
	return &rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: 2, Timestamp: 90000},
		Payload: []byte{0x65, 0x01, 0x02},
	}
}

// pliCounter is a goroutine-safe stand-in for the publisher's PLI writer.
type pliCounter struct {
	mu    sync.Mutex
	calls int
}

func (c *pliCounter) inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *pliCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestBroadcast_PublisherSlot(t *testing.T) {
	b, err := NewBroadcast()
	if err != nil {
		t.Fatalf("NewBroadcast: %v", err)
	}

	if b.Live() {
		t.Error("expected no publisher initially")
	}

	if err := b.AttachPublisher("pub-1", func() {}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if !b.Live() {
		t.Error("expected Live after attach")
	}

	if err := b.AttachPublisher("pub-2", func() {}); err != ErrPublisherBusy {
		t.Errorf("second attach = %v, want ErrPublisherBusy", err)
	}

	// Detach by a non-owner must not release the slot.
	b.DetachPublisher("pub-2")
	if !b.Live() {
		t.Error("expected slot still held after foreign detach")
	}

	b.DetachPublisher("pub-1")
	if b.Live() {
		t.Error("expected slot released")
	}

	if err := b.AttachPublisher("pub-2", func() {}); err != nil {
		t.Errorf("attach after release: %v", err)
	}
}

func TestBroadcast_RequestKeyframe(t *testing.T) {
	b, err := NewBroadcast()
	if err != nil {
		t.Fatalf("NewBroadcast: %v", err)
	}

	pli := &pliCounter{}
	if err := b.AttachPublisher("pub-1", pli.inc); err != nil {
		t.Fatalf("attach: %v", err)
	}

	b.RequestKeyframe()
	b.RequestKeyframe()
	if got := pli.count(); got != 2 {
		t.Errorf("PLI calls = %d, want 2", got)
	}
	if err := b.WriteVideo(keyframePacket()); err != nil {
		t.Fatalf("WriteVideo: %v", err)
	}

	b.DetachPublisher("pub-1")
	b.RequestKeyframe()
	if got := pli.count(); got != 2 {
		t.Errorf("PLI after detach = %d calls, want still 2", got)
	}
}

// A viewer that joins while no publisher is live must still get its
// keyframe: the pending request is replayed when a publisher attaches.
func TestBroadcast_KeyframeRequestSurvivesOffline(t *testing.T) {
	b, err := NewBroadcast()
	if err != nil {
		t.Fatalf("NewBroadcast: %v", err)
	}

	b.RequestKeyframe()

	pli := &pliCounter{}
	if err := b.AttachPublisher("pub-1", pli.inc); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if got := pli.count(); got != 1 {
		t.Errorf("PLI on attach = %d calls, want 1", got)
	}

	if err := b.WriteVideo(keyframePacket()); err != nil {
		t.Fatalf("WriteVideo: %v", err)
	}
}

// Until a keyframe lands in the video stream the broadcast keeps re-asking
// the publisher; the first keyframe stops the retries.
func TestBroadcast_KeyframeRetriesUntilKeyframe(t *testing.T) {
	oldInterval, oldLimit := keyframeRetryInterval, keyframeRetryLimit
	keyframeRetryInterval, keyframeRetryLimit = time.Millisecond, 1000
	defer func() { keyframeRetryInterval, keyframeRetryLimit = oldInterval, oldLimit }()

	b, err := NewBroadcast()
	if err != nil {
		t.Fatalf("NewBroadcast: %v", err)
	}

	pli := &pliCounter{}
	if err := b.AttachPublisher("pub-1", pli.inc); err != nil {
		t.Fatalf("attach: %v", err)
	}

	b.RequestKeyframe()

	deadline := time.Now().Add(time.Second)
	for pli.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("PLI calls = %d, want retries beyond the initial request", pli.count())
		}
		time.Sleep(time.Millisecond)
	}

	if err := b.WriteVideo(keyframePacket()); err != nil {
		t.Fatalf("WriteVideo: %v", err)
	}
	after := pli.count()
	time.Sleep(50 * time.Millisecond)
	// One retry may already have been in flight when the keyframe landed.
	if got := pli.count(); got > after+1 {
		t.Errorf("PLI calls kept growing after keyframe: %d -> %d", after, got)
	}
}

// Writes with no viewer attached must not error: the closed-pipe condition
// is expected while nobody is watching.
func TestBroadcast_WriteWithoutViewers(t *testing.T) {
	b, err := NewBroadcast()
	if err != nil {
		t.Fatalf("NewBroadcast: %v", err)
	}

	pkt := &rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: 1, Timestamp: 90000},
		Payload: []byte{0x65, 0x01, 0x02},
	}
	if err := b.WriteVideo(pkt); err != nil {
		t.Errorf("WriteVideo: %v", err)
	}
	if err := b.WriteAudio(pkt); err != nil {
		t.Errorf("WriteAudio: %v", err)
	}
}
