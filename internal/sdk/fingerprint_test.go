package sdk

import (
	"testing"

	"github.com/adreach/adsdk/internal/core/domain"
)

func TestFingerprintStableAcrossKeyOrder(t *testing.T) {
	a := Fingerprint("home", domain.TargetingContext{"topic": "tech", "lang": "en"})
	b := Fingerprint("home", domain.TargetingContext{"lang": "en", "topic": "tech"})
	if a != b {
		t.Errorf("same context different fingerprints: %s vs %s", a, b)
	}
}

func TestFingerprintDiscriminates(t *testing.T) {
	base := Fingerprint("home", domain.TargetingContext{"topic": "tech"})
	tests := []struct {
		name string
		fp   string
	}{
		{"different placement", Fingerprint("sidebar", domain.TargetingContext{"topic": "tech"})},
		{"different value", Fingerprint("home", domain.TargetingContext{"topic": "sports"})},
		{"different key", Fingerprint("home", domain.TargetingContext{"lang": "tech"})},
		{"empty context", Fingerprint("home", nil)},
	}
	for _, tt := range tests {
		if tt.fp == base {
			t.Errorf("%s: fingerprint collision with base", tt.name)
		}
	}
}

func TestFingerprintFixedWidth(t *testing.T) {
	if fp := Fingerprint("p", nil); len(fp) != 16 {
		t.Errorf("fingerprint length = %d, want 16 hex chars", len(fp))
	}
}
