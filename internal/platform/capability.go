package platform

import (
	"github.com/eligiorbautista/drmlive/internal/domain"
)

// KeySystem is the EME key system identifier requested from the browser.
type KeySystem string

const (
	KeySystemWidevine  KeySystem = "com.widevine.alpha"
	KeySystemFairPlay  KeySystem = "com.apple.fps"
	KeySystemPlayReady KeySystem = "com.microsoft.playready"
)

// Robustness says whether decryption happens in a hardware-backed TEE or in
// software.
type Robustness string

const (
	RobustnessHW Robustness = "HW"
	RobustnessSW Robustness = "SW"
)

// Media buffer sizes in milliseconds per robustness tier. Hardware CDMs add
// pipeline latency and need the deeper buffer; Firefox's software CDM needs
// more headroom than the Chromium one.
const (
	bufferHWMs        = 1200
	bufferSWMs        = 600
	bufferSWFirefoxMs = 900
)

// ProbeResults carries the outcome of the client's EME probes.
type ProbeResults struct {
	// EMEAvailable is false when requestMediaKeySystemAccess is missing or
	// blocked outright (e.g. iframe without allow="encrypted-media").
	EMEAvailable bool
	// HardwareSecure is true when the HW_SECURE_ALL robustness probe
	// succeeded.
	HardwareSecure bool
}

// Capability is the resolved DRM capability for one playback session.
type Capability struct {
	Platform      Platform
	KeySystem     KeySystem
	Scheme        domain.DRMScheme
	Robustness    Robustness
	MediaBufferMs int
}

// Resolve picks the key system and robustness for a detected platform.
// override forces the robustness regardless of probe results (testing hook,
// wired to a URL query parameter); pass "" for normal resolution.
//
// A client with no EME at all is a terminal condition: the returned
// CapabilityError is not retryable and the player should surface it as a
// device/browser-not-supported state.
func Resolve(p Platform, probes ProbeResults, override Robustness) (Capability, error) {
	if !probes.EMEAvailable {
		return Capability{}, &domain.CapabilityError{
			Reason: "encrypted media extensions unavailable (unsupported browser or embed without encrypted-media permission)",
		}
	}

	cap := Capability{Platform: p}

	switch p {
	case PlatformIOS, PlatformSafari:
		cap.KeySystem = KeySystemFairPlay
		cap.Scheme = domain.SchemeFairPlay
	default:
		cap.KeySystem = KeySystemWidevine
		cap.Scheme = domain.SchemeWidevine
	}

	cap.Robustness = RobustnessSW
	if probes.HardwareSecure {
		cap.Robustness = RobustnessHW
	}
	if override == RobustnessHW || override == RobustnessSW {
		cap.Robustness = override
	}

	cap.MediaBufferMs = bufferFor(p, cap.Robustness)
	return cap, nil
}

func bufferFor(p Platform, r Robustness) int {
	if r == RobustnessHW {
		return bufferHWMs
	}
	if p == PlatformFirefox {
		return bufferSWFirefoxMs
	}
	return bufferSWMs
}
