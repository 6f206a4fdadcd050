package platform

import "github.com/eligiorbautista/drmlive/internal/domain"

// SDKParams are the merchant-level inputs to the DRM transform SDK config,
// taken from server configuration rather than detection.
type SDKParams struct {
	Merchant    string
	UserID      string
	SessionID   string
	Environment string
	KeyID       string
	IV          string
}

// VideoConfig describes the encrypted video track for the SDK.
type VideoConfig struct {
	Codec      string `json:"codec"`
	Encryption string `json:"encryption"`
	KeyID      string `json:"keyId,omitempty"`
	IV         string `json:"iv,omitempty"`
	Robustness string `json:"robustness"`
}

// AudioConfig describes the audio track for the SDK.
type AudioConfig struct {
	Codec      string `json:"codec"`
	Encryption string `json:"encryption"`
}

// SDKConfig is the configuration object passed to rtcDrmConfigure. The field
// names are the vendor SDK's contract.
type SDKConfig struct {
	Merchant      string      `json:"merchant"`
	UserID        string      `json:"userId"`
	SessionID     string      `json:"sessionId,omitempty"`
	Environment   string      `json:"environment"`
	Video         VideoConfig `json:"video"`
	Audio         AudioConfig `json:"audio"`
	MediaBufferMs int         `json:"mediaBufferMs"`
	Type          string      `json:"type"`
}

// BuildSDKConfig assembles the vendor SDK configuration for a resolved
// capability. FairPlay platforms omit the explicit key id (the key is
// resolved through the FairPlay certificate exchange), use cbcs encryption
// and AAC audio; everything else gets cenc, the configured key id, and Opus.
func BuildSDKConfig(cap Capability, params SDKParams) SDKConfig {
	cfg := SDKConfig{
		Merchant:      params.Merchant,
		UserID:        params.UserID,
		SessionID:     params.SessionID,
		Environment:   params.Environment,
		MediaBufferMs: cap.MediaBufferMs,
		Type:          "webrtc",
	}

	if cap.Scheme == domain.SchemeFairPlay {
		cfg.Video = VideoConfig{
			Codec:      "h264",
			Encryption: "cbcs",
			Robustness: string(cap.Robustness),
		}
		cfg.Audio = AudioConfig{Codec: "aac", Encryption: "clear"}
		return cfg
	}

	cfg.Video = VideoConfig{
		Codec:      "h264",
		Encryption: "cenc",
		KeyID:      params.KeyID,
		IV:         params.IV,
		Robustness: string(cap.Robustness),
	}
	cfg.Audio = AudioConfig{Codec: "opus", Encryption: "clear"}
	return cfg
}
