package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/eligiorbautista/drmlive/internal/domain"
	"github.com/eligiorbautista/drmlive/internal/platform"
)

// drmConfigResponse is what a player needs to call rtcDrmConfigure.
type drmConfigResponse struct {
	Platform   string             `json:"platform"`
	KeySystem  string             `json:"keySystem"`
	Scheme     domain.DRMScheme   `json:"scheme"`
	Robustness string             `json:"robustness"`
	Enabled    bool               `json:"enabled"`
	Config     platform.SDKConfig `json:"config"`
}

// handleDRMConfig resolves the DRM configuration for one playback session.
// The player reports its EME probe outcomes as query parameters (eme,
// hwSecure) since only the browser can run them; platform detection uses the
// User-Agent and client-hint headers. The robustness query parameter
// overrides the probed value for testing.
func (s *Server) handleDRMConfig(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hints := platform.Hints{
		Platform: strings.Trim(r.Header.Get("Sec-CH-UA-Platform"), `"`),
		Mobile:   r.Header.Get("Sec-CH-UA-Mobile") == "?1",
	}
	detected := platform.Detect(r.UserAgent(), hints)

	probes := platform.ProbeResults{
		EMEAvailable:   q.Get("eme") != "false",
		HardwareSecure: q.Get("hwSecure") == "true",
	}

	var override platform.Robustness
	switch q.Get("robustness") {
	case "HW":
		override = platform.RobustnessHW
	case "SW":
		override = platform.RobustnessSW
	}

	cap, err := platform.Resolve(detected, probes, override)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	enabled, err := s.store.EncryptionEnabled(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	userID := q.Get("userId")
	if userID == "" {
		userID = uuid.NewString()
	}

	cfg := platform.BuildSDKConfig(cap, platform.SDKParams{
		Merchant:    s.cfg.DRM.Merchant,
		UserID:      userID,
		SessionID:   uuid.NewString(),
		Environment: s.cfg.DRM.Environment,
		KeyID:       s.cfg.DRM.KeyID,
		IV:          s.cfg.DRM.IV,
	})

	writeJSON(w, http.StatusOK, drmConfigResponse{
		Platform:   detected.String(),
		KeySystem:  string(cap.KeySystem),
		Scheme:     cap.Scheme,
		Robustness: string(cap.Robustness),
		Enabled:    enabled,
		Config:     cfg,
	})
}
