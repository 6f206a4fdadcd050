package domain

import "encoding/json"

// DRMScheme identifies the DRM system named in a DRMtoday license request.
type DRMScheme string

const (
	SchemeWidevine  DRMScheme = "WIDEVINE_MODULAR"
	SchemeFairPlay  DRMScheme = "FAIRPLAY"
	SchemePlayReady DRMScheme = "PLAYREADY"
	SchemeOMA       DRMScheme = "OMADRM"
	SchemeWisePlay  DRMScheme = "WISEPLAY"
)

// Known reports whether the scheme is one DRMtoday can send.
func (s DRMScheme) Known() bool {
	switch s {
	case SchemeWidevine, SchemeFairPlay, SchemePlayReady, SchemeOMA, SchemeWisePlay:
		return true
	}
	return false
}

// HDCPLevel is the HDCP requirement DRMtoday embeds in the issued license.
type HDCPLevel string

const (
	HDCPNone HDCPLevel = "HDCP_NONE"
	HDCPV1   HDCPLevel = "HDCP_V1"
	HDCPV2   HDCPLevel = "HDCP_V2"
)

// ResolutionTier buckets the stream resolution for output-protection decisions.
type ResolutionTier int

const (
	TierUnknown ResolutionTier = iota
	TierSD
	TierHD
	TierUHD
)

func (t ResolutionTier) String() string {
	switch t {
	case TierSD:
		return "SD"
	case TierHD:
		return "HD"
	case TierUHD:
		return "UHD"
	default:
		return "unknown"
	}
}

// ClientInfo is the device description DRMtoday forwards with a license
// request. All fields are supplied by the CDM and passed through opaquely
// except SecLevel, which drives the output-protection policy.
type ClientInfo struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Version      string `json:"version,omitempty"`
	CertType     string `json:"certType,omitempty"`
	DRMVersion   string `json:"drmVersion,omitempty"`
	SecLevel     string `json:"secLevel,omitempty"`
}

// CallbackRequest is the body DRMtoday POSTs to the authorization callback.
type CallbackRequest struct {
	Asset           string          `json:"asset"`
	Variant         string          `json:"variant,omitempty"`
	User            string          `json:"user,omitempty"`
	Session         string          `json:"session,omitempty"`
	Client          string          `json:"client,omitempty"`
	DRMScheme       DRMScheme       `json:"drmScheme"`
	ClientInfo      ClientInfo      `json:"clientInfo"`
	RequestMetadata json.RawMessage `json:"requestMetadata,omitempty"`
}

// OutputProtection is the protection policy embedded in a CRT response.
type OutputProtection struct {
	Digital     bool      `json:"digital"`
	Analogue    bool      `json:"analogue"`
	Enforce     bool      `json:"enforce"`
	RequireHDCP HDCPLevel `json:"requireHDCP"`
}

// PurchaseProfile marks a license with no expiration.
type PurchaseProfile struct{}

// RentalProfile limits license lifetime.
type RentalProfile struct {
	AbsoluteExpiration string `json:"absoluteExpiration,omitempty"`
	PlayDurationMs     int64  `json:"playDuration,omitempty"`
}

// Profile selects the DRMtoday license profile. Exactly one field is set.
type Profile struct {
	Purchase *PurchaseProfile `json:"purchase,omitempty"`
	Rental   *RentalProfile   `json:"rental,omitempty"`
}

// CRT is the Customer Rights Token returned to DRMtoday. The shape is
// DRMtoday's contract; field names must not change.
type CRT struct {
	Profile          Profile          `json:"profile"`
	AssetID          string           `json:"assetId,omitempty"`
	OutputProtection OutputProtection `json:"outputProtection"`
	StoreLicense     bool             `json:"storeLicense"`
}
