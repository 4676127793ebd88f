package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/adreach/adsdk/internal/metrics"
)

// Config holds telemetry pipeline settings.
type Config struct {
	EnableRemote         bool
	RemoteEndpoint       string
	BatchSize            int
	FlushInterval        time.Duration
	IncludeSensitiveData bool
	IncludeStackTrace    bool
	Headers              map[string]string
}

// DefaultConfig returns sensible pipeline defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     20,
		FlushInterval: 30 * time.Second,
	}
}

func (c Config) normalize() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 30 * time.Second
	}
	return c
}

// Pipeline is a bounded, ordered telemetry buffer with batched remote
// submission. Entries are appended by Record; the buffer is drained as a
// unit when it reaches BatchSize or when the flush timer fires, and the
// snapshot is submitted as one JSON request under the envelope key
// ("logs" or "errors"). Submission is at-most-once: a failed batch is
// dropped and the loss is logged locally.
type Pipeline[E any] struct {
	cfg      Config
	key      string
	sanitize func(E) E

	httpClient *http.Client
	log        *slog.Logger

	mu     sync.Mutex
	buf    []E
	closed bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewPipeline creates a pipeline submitting batches under the given
// envelope key. sanitize (optional) is applied per entry before
// submission; it is skipped when IncludeSensitiveData is set. The flush
// timer starts immediately and is owned by the pipeline until Close.
func NewPipeline[E any](cfg Config, key string, sanitize func(E) E, log *slog.Logger) *Pipeline[E] {
	cfg = cfg.normalize()
	if log == nil {
		log = slog.Default()
	}
	p := &Pipeline[E]{
		cfg:      cfg,
		key:      key,
		sanitize: sanitize,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log:  log,
		buf:  make([]E, 0, cfg.BatchSize),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go p.flushLoop()
	return p
}

// Record appends an entry. Reaching BatchSize triggers an immediate
// flush. Recording on a closed pipeline is a no-op.
func (p *Pipeline[E]) Record(entry E) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.buf = append(p.buf, entry)
	full := len(p.buf) >= p.cfg.BatchSize
	p.mu.Unlock()

	if full {
		go p.Flush()
	}
}

// Len reports current buffer occupancy.
func (p *Pipeline[E]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// Flush atomically snapshots and empties the buffer, then submits the
// snapshot as a single request. It never panics and never re-queues
// failed entries.
func (p *Pipeline[E]) Flush() {
	p.mu.Lock()
	if len(p.buf) == 0 {
		p.mu.Unlock()
		return
	}
	batch := p.buf
	p.buf = make([]E, 0, p.cfg.BatchSize)
	p.mu.Unlock()

	if !p.cfg.EnableRemote || p.cfg.RemoteEndpoint == "" {
		return
	}

	if err := p.submit(batch); err != nil {
		metrics.TelemetryFlushes.WithLabelValues(p.key, "error").Inc()
		metrics.TelemetryEntriesDropped.WithLabelValues(p.key).Add(float64(len(batch)))
		p.log.Warn("telemetry batch dropped", "channel", p.key, "entries", len(batch), "error", err)
		return
	}
	metrics.TelemetryFlushes.WithLabelValues(p.key, "ok").Inc()
}

// Close cancels the flush timer, performs one final best-effort flush,
// and releases the buffer. It is idempotent and never returns an error
// to honor best-effort shutdown.
func (p *Pipeline[E]) Close() {
	p.stopOnce.Do(func() {
		close(p.stop)
		<-p.done

		p.Flush()

		p.mu.Lock()
		p.closed = true
		p.buf = nil
		p.mu.Unlock()
	})
}

func (p *Pipeline[E]) flushLoop() {
	defer close(p.done)

	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.Flush()
		}
	}
}

func (p *Pipeline[E]) submit(batch []E) error {
	if p.sanitize != nil && !p.cfg.IncludeSensitiveData {
		for i := range batch {
			batch[i] = p.sanitize(batch[i])
		}
	}

	body, err := json.Marshal(map[string][]E{p.key: batch})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.RemoteEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit batch: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry endpoint returned %d", resp.StatusCode)
	}
	return nil
}
