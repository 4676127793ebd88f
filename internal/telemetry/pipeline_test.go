package telemetry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/adreach/adsdk/internal/core/domain"
)

// captureServer records every submitted batch body.
type captureServer struct {
	mu     sync.Mutex
	bodies [][]byte
	status int
}

func newCaptureServer(status int) (*captureServer, *httptest.Server) {
	cs := &captureServer{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cs.mu.Lock()
		cs.bodies = append(cs.bodies, body)
		cs.mu.Unlock()
		w.WriteHeader(cs.status)
	}))
	return cs, srv
}

func (cs *captureServer) count() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.bodies)
}

func (cs *captureServer) first(t *testing.T) map[string][]domain.LogRecord {
	t.Helper()
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.bodies) == 0 {
		t.Fatal("no batch submitted")
	}
	var payload map[string][]domain.LogRecord
	if err := json.Unmarshal(cs.bodies[0], &payload); err != nil {
		t.Fatalf("bad batch body: %v", err)
	}
	return payload
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func testConfig(endpoint string) Config {
	return Config{
		EnableRemote:   true,
		RemoteEndpoint: endpoint,
		BatchSize:      3,
		FlushInterval:  time.Hour, // timer effectively disabled unless a test wants it
	}
}

func TestFlushOnBatchSize(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	p := NewPipeline[domain.LogRecord](testConfig(srv.URL), "logs", nil, nil)
	defer p.Close()

	p.Record(domain.LogRecord{Message: "a"})
	p.Record(domain.LogRecord{Message: "b"})
	if cs.count() != 0 {
		t.Fatal("flushed before batch size reached")
	}
	p.Record(domain.LogRecord{Message: "c"})

	waitFor(t, func() bool { return cs.count() == 1 })

	payload := cs.first(t)
	logs := payload["logs"]
	if len(logs) != 3 {
		t.Fatalf("batch carried %d entries, want 3", len(logs))
	}
	// Insertion order preserved within the batch.
	for i, want := range []string{"a", "b", "c"} {
		if logs[i].Message != want {
			t.Errorf("logs[%d].Message = %q, want %q", i, logs[i].Message, want)
		}
	}
}

func TestFlushOnInterval(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = 100
	cfg.FlushInterval = 20 * time.Millisecond

	p := NewPipeline[domain.LogRecord](cfg, "logs", nil, nil)
	defer p.Close()

	p.Record(domain.LogRecord{Message: "under-batch-size"})
	waitFor(t, func() bool { return cs.count() >= 1 })
}

func TestSubmissionFailureDropsWithoutRequeue(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusInternalServerError)
	defer srv.Close()

	p := NewPipeline[domain.LogRecord](testConfig(srv.URL), "logs", nil, nil)
	defer p.Close()

	for i := 0; i < 3; i++ {
		p.Record(domain.LogRecord{Message: "x"})
	}
	waitFor(t, func() bool { return cs.count() == 1 })

	// The failed batch must not be re-queued.
	if n := p.Len(); n != 0 {
		t.Errorf("buffer holds %d entries after failed submission, want 0", n)
	}
}

func TestCloseDrainsBuffer(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	p := NewPipeline[domain.LogRecord](testConfig(srv.URL), "logs", nil, nil)
	p.Record(domain.LogRecord{Message: "pending"})

	p.Close()

	if cs.count() != 1 {
		t.Fatal("non-empty buffer not flushed on close")
	}
	if got := len(cs.first(t)["logs"]); got != 1 {
		t.Errorf("final flush carried %d entries, want 1", got)
	}
}

func TestCloseIdempotentAndRecordAfterCloseNoop(t *testing.T) {
	_, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	p := NewPipeline[domain.LogRecord](testConfig(srv.URL), "logs", nil, nil)
	p.Close()
	p.Close() // must not panic or block

	p.Record(domain.LogRecord{Message: "late"})
	if p.Len() != 0 {
		t.Error("record after close should not buffer")
	}
	p.Flush() // must not panic
}

func TestRemoteDisabledDiscardsQuietly(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.EnableRemote = false

	p := NewPipeline[domain.LogRecord](cfg, "logs", nil, nil)
	defer p.Close()

	for i := 0; i < 5; i++ {
		p.Record(domain.LogRecord{Message: "x"})
	}
	p.Flush()
	time.Sleep(20 * time.Millisecond)
	if cs.count() != 0 {
		t.Error("remote-disabled pipeline must not submit")
	}
}

func TestSanitizeAppliedPerEntry(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = 2

	strip := func(r domain.ErrorReport) domain.ErrorReport {
		r.UserID = ""
		r.AdditionalData = nil
		return r
	}
	p := NewPipeline(cfg, "errors", strip, nil)
	defer p.Close()

	p.Record(domain.ErrorReport{Code: "a", UserID: "u1", AdditionalData: map[string]any{"k": "v"}})
	p.Record(domain.ErrorReport{Code: "b", UserID: "u2"})

	waitFor(t, func() bool { return cs.count() == 1 })

	cs.mu.Lock()
	body := string(cs.bodies[0])
	cs.mu.Unlock()
	var payload map[string][]domain.ErrorReport
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	for _, rep := range payload["errors"] {
		if rep.UserID != "" || rep.AdditionalData != nil {
			t.Errorf("entry %s not sanitized: %+v", rep.Code, rep)
		}
	}
}

func TestSensitiveDataKeptWhenConfigured(t *testing.T) {
	cs, srv := newCaptureServer(http.StatusOK)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = 1
	cfg.IncludeSensitiveData = true

	strip := func(r domain.ErrorReport) domain.ErrorReport {
		r.UserID = ""
		return r
	}
	p := NewPipeline(cfg, "errors", strip, nil)
	defer p.Close()

	p.Record(domain.ErrorReport{Code: "a", UserID: "u1"})
	waitFor(t, func() bool { return cs.count() == 1 })

	cs.mu.Lock()
	body := string(cs.bodies[0])
	cs.mu.Unlock()
	var payload map[string][]domain.ErrorReport
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if payload["errors"][0].UserID != "u1" {
		t.Error("includeSensitiveData=true should bypass sanitization")
	}
}
