package domain

import "testing"

func TestDRMSchemeKnown(t *testing.T) {
	tests := []struct {
		scheme DRMScheme
		want   bool
	}{
		{SchemeWidevine, true},
		{SchemeFairPlay, true},
		{SchemePlayReady, true},
		{SchemeOMA, true},
		{SchemeWisePlay, true},
		{DRMScheme("ACMEDRM"), false},
		{DRMScheme(""), false},
		// Scheme names are case-sensitive on the wire.
		{DRMScheme("widevine_modular"), false},
	}

	for _, tt := range tests {
		if got := tt.scheme.Known(); got != tt.want {
			t.Errorf("Known(%q) = %v, want %v", tt.scheme, got, tt.want)
		}
	}
}
