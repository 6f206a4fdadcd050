// Package webrtc implements the WHIP/WHEP media plane: one publisher peer
// feeding a broadcast hub that fans RTP out to viewer peers.
package webrtc

import (
	"fmt"

	"github.com/pion/interceptor"
	pion "github.com/pion/webrtc/v4"
)

// Media clock rates and payload types registered with the media engine.
const (
	h264PayloadType = 102
	opusPayloadType = 111
)

// NewAPI builds the shared Pion API with the codecs the demo streams:
// H264 video (the codec the DRM transform encrypts) and Opus audio. The
// default interceptors provide NACK and PLI handling on both legs.
func NewAPI() (*pion.API, error) {
	m := &pion.MediaEngine{}

	videoRTCPFeedback := []pion.RTCPFeedback{
		{Type: "goog-remb"},
		{Type: "ccm", Parameter: "fir"},
		{Type: "nack"},
		{Type: "nack", Parameter: "pli"},
	}

	h264Codec := pion.RTPCodecParameters{
		RTPCodecCapability: pion.RTPCodecCapability{
			MimeType:     pion.MimeTypeH264,
			ClockRate:    90000,
			SDPFmtpLine:  "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42001f",
			RTCPFeedback: videoRTCPFeedback,
		},
		PayloadType: h264PayloadType,
	}
	if err := m.RegisterCodec(h264Codec, pion.RTPCodecTypeVideo); err != nil {
		return nil, fmt.Errorf("register H264: %w", err)
	}

	opusCodec := pion.RTPCodecParameters{
		RTPCodecCapability: pion.RTPCodecCapability{
			MimeType:    pion.MimeTypeOpus,
			ClockRate:   48000,
			Channels:    2,
			SDPFmtpLine: "minptime=10;useinbandfec=1",
		},
		PayloadType: opusPayloadType,
	}
	if err := m.RegisterCodec(opusCodec, pion.RTPCodecTypeAudio); err != nil {
		return nil, fmt.Errorf("register Opus: %w", err)
	}

	i := &interceptor.Registry{}
	if err := pion.RegisterDefaultInterceptors(m, i); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}

	return pion.NewAPI(
		pion.WithMediaEngine(m),
		pion.WithInterceptorRegistry(i),
	), nil
}

// PeerConfiguration returns the RTCConfiguration both WHIP and WHEP peers use.
func PeerConfiguration(stunServer string) pion.Configuration {
	cfg := pion.Configuration{
		BundlePolicy: pion.BundlePolicyMaxBundle,
	}
	if stunServer != "" {
		cfg.ICEServers = []pion.ICEServer{{URLs: []string{stunServer}}}
	}
	return cfg
}
