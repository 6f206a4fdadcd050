package drm

import (
	"github.com/eligiorbautista/drmlive/internal/domain"
)

// Options carries the merchant-level CRT parameters that don't depend on the
// individual license request.
type Options struct {
	// AssetID overrides the asset id echoed in the CRT. Empty echoes the
	// request's asset.
	AssetID string
	// StoreLicense allows the CDM to persist the license for offline reuse.
	StoreLicense bool
}

// BuildCRT maps a DRMtoday callback request to the CRT response. Pure: the
// same request and options always produce the same token.
func BuildCRT(req domain.CallbackRequest, opts Options) domain.CRT {
	tier := ResolutionTierFromMetadata(req.RequestMetadata)

	assetID := opts.AssetID
	if assetID == "" {
		assetID = req.Asset
	}

	return domain.CRT{
		Profile:          domain.Profile{Purchase: &domain.PurchaseProfile{}},
		AssetID:          assetID,
		OutputProtection: ResolveOutputProtection(req.DRMScheme, req.ClientInfo.SecLevel, tier),
		StoreLicense:     opts.StoreLicense,
	}
}
