// Package platform decides which DRM key system and robustness level a
// client should use. The inputs are the facts a player gathers in the
// browser (User-Agent, client hints, EME probe outcomes) and the output is
// the configuration object handed to the DRM transform SDK.
package platform

import "strings"

// Platform is the detected client platform. Closed set: detection always
// returns exactly one of these.
type Platform int

const (
	PlatformOther Platform = iota
	PlatformIOS
	PlatformSafari
	PlatformAndroid
	PlatformWindows
	PlatformFirefox
	PlatformLinux
)

func (p Platform) String() string {
	switch p {
	case PlatformIOS:
		return "ios"
	case PlatformSafari:
		return "safari"
	case PlatformAndroid:
		return "android"
	case PlatformWindows:
		return "windows"
	case PlatformFirefox:
		return "firefox"
	case PlatformLinux:
		return "linux"
	default:
		return "other"
	}
}

// Hints carries the structured client hints (the navigator.userAgentData
// analog) a browser sends alongside the User-Agent string. All fields are
// optional; empty values fall back to User-Agent sniffing.
type Hints struct {
	// Platform is the Sec-CH-UA-Platform value, e.g. "Android", "Windows".
	Platform string
	// Mobile is the Sec-CH-UA-Mobile flag.
	Mobile bool
}

// Detect maps a User-Agent string plus client hints to a Platform. The
// predicates run in fixed precedence order and the first match wins:
// iOS/Safari, then Android, Windows, Firefox, Linux, other. Ties therefore
// resolve toward FairPlay-capable platforms; everything unmatched is treated
// as a generic Widevine-capable browser.
func Detect(userAgent string, hints Hints) Platform {
	ua := strings.ToLower(userAgent)
	hintPlatform := strings.ToLower(hints.Platform)

	switch {
	case isIOS(ua, hintPlatform):
		return PlatformIOS
	case isSafari(ua):
		return PlatformSafari
	case strings.Contains(ua, "android") || hintPlatform == "android":
		return PlatformAndroid
	case strings.Contains(ua, "windows") || hintPlatform == "windows":
		return PlatformWindows
	case strings.Contains(ua, "firefox"):
		return PlatformFirefox
	case strings.Contains(ua, "linux") || hintPlatform == "linux":
		return PlatformLinux
	case hints.Mobile:
		// Only Chromium browsers send Sec-CH-UA-Mobile, and a mobile
		// Chromium without any iOS/iPadOS UA token is an Android device.
		return PlatformAndroid
	default:
		return PlatformOther
	}
}

func isIOS(ua, hintPlatform string) bool {
	if hintPlatform == "ios" {
		return true
	}
	return strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod")
}

// isSafari detects desktop Safari. Chromium-family browsers also advertise
// "safari" in their UA, so Chrome/Edge/Opera markers must be absent.
func isSafari(ua string) bool {
	if !strings.Contains(ua, "safari") {
		return false
	}
	if strings.Contains(ua, "chrome") || strings.Contains(ua, "chromium") ||
		strings.Contains(ua, "crios") || strings.Contains(ua, "edg") ||
		strings.Contains(ua, "opr") {
		return false
	}
	return true
}
