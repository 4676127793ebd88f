package errs

import (
	"errors"
	"testing"
)

func TestVariantDefaults(t *testing.T) {
	ctx := NewContext()
	tests := []struct {
		name      string
		err       *Error
		category  Category
		severity  Severity
		retryable bool
	}{
		{"network", NewNetwork("timeout", "net-timeout", ctx), CategoryNetwork, SeverityHigh, true},
		{"privacy", NewPrivacyViolation("no consent", CodeConsentMissing, ctx), CategoryPrivacy, SeverityCritical, false},
		{"ad_serving", NewAdServing("no fill", "no-fill", ctx), CategoryAdServing, SeverityMedium, false},
		{"sdk_integration", NewSDKIntegration("bad key", CodeInitFailed, ctx), CategorySDKIntegration, SeverityHigh, false},
	}

	for _, tt := range tests {
		if tt.err.Category != tt.category {
			t.Errorf("%s: category = %s, want %s", tt.name, tt.err.Category, tt.category)
		}
		if tt.err.Severity != tt.severity {
			t.Errorf("%s: severity = %s, want %s", tt.name, tt.err.Severity, tt.severity)
		}
		if tt.err.Retryable != tt.retryable {
			t.Errorf("%s: retryable = %v, want %v", tt.name, tt.err.Retryable, tt.retryable)
		}
	}
}

func TestPrivacyViolationNeverRetryable(t *testing.T) {
	e := NewPrivacyViolation("breach", CodeConsentMissing, NewContext(),
		WithRetryable(true), WithSeverity(SeverityLow))
	if e.Retryable {
		t.Error("privacy violation must not be retryable")
	}
	if e.Severity != SeverityCritical {
		t.Errorf("privacy violation severity = %s, want critical", e.Severity)
	}
}

func TestAdServingRetryableConfigurable(t *testing.T) {
	e := NewAdServing("upstream 503", "upstream-unavailable", NewContext(), WithRetryable(true))
	if !e.Retryable {
		t.Error("ad serving retryable override not applied")
	}
}

func TestTroubleshootingURL(t *testing.T) {
	e := NewNetwork("timeout", "net-timeout", NewContext())
	got := e.TroubleshootingURL("https://docs.example.com")
	want := "https://docs.example.com/network/net-timeout"
	if got != want {
		t.Errorf("TroubleshootingURL = %q, want %q", got, want)
	}
	if e.TroubleshootingURL("") != DefaultDocsBaseURL+"/network/net-timeout" {
		t.Errorf("empty docs base should use default")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	e := NewNetwork("request failed", "net-reset", NewContext(), WithCause(cause))
	if !errors.Is(e, cause) {
		t.Error("errors.Is should reach the cause")
	}
	var ce *Error
	if !errors.As(error(e), &ce) {
		t.Error("errors.As should match *Error")
	}
}

func TestGuidanceLookup(t *testing.T) {
	g := GuidanceFor(CodeInitFailed)
	if g.Summary == "" || g.Instruction == "" {
		t.Error("known code should have full guidance")
	}

	unknown := GuidanceFor("something-new")
	if unknown.Code != "something-new" {
		t.Errorf("unknown guidance code = %q, want echo of input", unknown.Code)
	}
	if unknown.Instruction == "" {
		t.Error("unknown code must degrade to generic guidance, not empty")
	}
}
