package telemetry

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/adreach/adsdk/internal/core/domain"
	"github.com/adreach/adsdk/internal/core/errs"
)

func TestReportSanitizedByDefault(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = 1
	r := NewReporter(cfg, nil)
	defer r.Close()

	ec := errs.NewContext()
	ec.SessionID = "sess-1"
	ec.UserID = "user-1"
	ec.AdditionalData = map[string]any{"placement": "home"}
	r.Report(errs.NewNetwork("timeout", "net-timeout", ec), "fp-1")

	waitFor(t, func() bool { return cs.count() == 1 })

	cs.mu.Lock()
	body := cs.bodies[0]
	cs.mu.Unlock()

	var payload map[string][]domain.ErrorReport
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	rep := payload["errors"][0]
	if rep.UserID != "" {
		t.Error("userId must be stripped from submitted reports")
	}
	if rep.AdditionalData != nil {
		t.Error("additionalData must be stripped from submitted reports")
	}
	// Non-sensitive fields survive sanitization.
	if rep.SessionID != "sess-1" {
		t.Errorf("sessionId = %q, want sess-1", rep.SessionID)
	}
	if rep.Code != "net-timeout" || rep.Category != "network" {
		t.Errorf("report fields = %s/%s, want network/net-timeout", rep.Category, rep.Code)
	}
	if rep.Fingerprint != "fp-1" {
		t.Errorf("fingerprint = %q, want fp-1", rep.Fingerprint)
	}
}

func TestReportStackTraceOptIn(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = 1
	cfg.IncludeStackTrace = true
	r := NewReporter(cfg, nil)
	defer r.Close()

	r.Report(errs.NewAdServing("no fill", "no-fill", errs.NewContext()), "")
	waitFor(t, func() bool { return cs.count() == 1 })

	cs.mu.Lock()
	body := cs.bodies[0]
	cs.mu.Unlock()
	var payload map[string][]domain.ErrorReport
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if payload["errors"][0].StackTrace == "" {
		t.Error("includeStackTrace=true should attach a stack trace")
	}
}

func TestEveryOccurrenceReportedIndependently(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = 3
	r := NewReporter(cfg, nil)
	defer r.Close()

	e := errs.NewNetwork("same error", "net-timeout", errs.NewContext())
	r.Report(e, "")
	r.Report(e, "")
	r.Report(e, "")

	waitFor(t, func() bool { return cs.count() == 1 })
	cs.mu.Lock()
	body := cs.bodies[0]
	cs.mu.Unlock()
	var payload map[string][]domain.ErrorReport
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(payload["errors"]) != 3 {
		t.Errorf("batch carried %d reports, want 3 (no deduplication)", len(payload["errors"]))
	}
}
