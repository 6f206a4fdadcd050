// Package drm builds Customer Rights Token responses for the DRMtoday
// authorization callback. The output-protection policy is a lookup keyed on
// (scheme, security level, resolution tier).
package drm

import (
	"github.com/tidwall/gjson"

	"github.com/eligiorbautista/drmlive/internal/domain"
)

// hardwareSecLevel reports whether the CDM runs in a hardware-backed TEE.
// Level strings are scheme-specific: Widevine reports "1"/"L1" (hardware)
// or "3"/"L3" (software), PlayReady reports SL3000/"HW" vs SL2000/"SW".
// A missing level is treated as software, the weakest-protection row, so an
// under-reporting client degrades to an unprotected license rather than a
// playback failure.
func hardwareSecLevel(scheme domain.DRMScheme, secLevel string) bool {
	switch scheme {
	case domain.SchemeWidevine:
		return secLevel == "1" || secLevel == "L1"
	case domain.SchemePlayReady:
		return secLevel == "3000" || secLevel == "SL3000" || secLevel == "HW"
	default:
		return false
	}
}

// hdcpForTier picks the HDCP version a hardware-secure license requires.
// UHD content needs HDCP 2.x; everything below is satisfied by 1.x.
func hdcpForTier(tier domain.ResolutionTier) domain.HDCPLevel {
	if tier == domain.TierUHD {
		return domain.HDCPV2
	}
	return domain.HDCPV1
}

// ResolveOutputProtection returns the output-protection policy for a license
// request. Unknown schemes and software security levels fall through to the
// permissive default row (HDCP_NONE, enforce=false); digital and analogue
// outputs are always allowed, only the HDCP requirement varies.
func ResolveOutputProtection(scheme domain.DRMScheme, secLevel string, tier domain.ResolutionTier) domain.OutputProtection {
	op := domain.OutputProtection{
		Digital:     true,
		Analogue:    true,
		Enforce:     false,
		RequireHDCP: domain.HDCPNone,
	}

	switch scheme {
	case domain.SchemeWidevine, domain.SchemePlayReady:
		if hardwareSecLevel(scheme, secLevel) {
			op.Enforce = true
			op.RequireHDCP = hdcpForTier(tier)
		}

	case domain.SchemeFairPlay:
		// FairPlay always enforces; the HDCP requirement only rises above
		// none when resolution data says the stream is HD or better.
		op.Enforce = true
		if tier == domain.TierHD || tier == domain.TierUHD {
			op.RequireHDCP = domain.HDCPV1
		}
	}

	return op
}

// ResolutionTierFromMetadata extracts the stream resolution from the
// vendor-defined requestMetadata blob, if present. The field layout is not
// under our control, so probe the known spellings leniently instead of
// binding a struct.
func ResolutionTierFromMetadata(metadata []byte) domain.ResolutionTier {
	if len(metadata) == 0 {
		return domain.TierUnknown
	}

	height := gjson.GetBytes(metadata, "resolution.height")
	if !height.Exists() {
		height = gjson.GetBytes(metadata, "maxHeight")
	}
	if !height.Exists() {
		return domain.TierUnknown
	}

	switch h := height.Int(); {
	case h >= 2160:
		return domain.TierUHD
	case h >= 720:
		return domain.TierHD
	case h > 0:
		return domain.TierSD
	default:
		return domain.TierUnknown
	}
}
