package sdk

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/adreach/adsdk/internal/core/config"
	"github.com/adreach/adsdk/internal/core/domain"
	"github.com/adreach/adsdk/internal/core/errs"
	"github.com/adreach/adsdk/internal/infra/adserver"
	redisclient "github.com/adreach/adsdk/internal/infra/redis"
	"github.com/adreach/adsdk/internal/metrics"
	"github.com/adreach/adsdk/internal/retry"
	"github.com/adreach/adsdk/internal/telemetry"
	"github.com/google/uuid"
)

// State tracks the SDK lifecycle.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateInitialized
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

const minAPIKeyLength = 10

// AdSource is the upstream ad decisioning surface.
type AdSource interface {
	FetchAd(ctx context.Context, placement domain.Placement, tc domain.TargetingContext, sessionID string) (*domain.Ad, error)
	CheckPermissions(ctx context.Context) ([]string, error)
}

// AdCache is the optional fingerprint-keyed ad cache. Implementations
// are soft-fail: Get returns nil on any failure, Set is best effort.
type AdCache interface {
	Get(ctx context.Context, fingerprint string) *domain.Ad
	Set(ctx context.Context, fingerprint string, ad *domain.Ad)
}

// SDK is the resilience facade. All higher-level operations route
// through the retry engine and the telemetry pipelines it owns.
type SDK struct {
	cfg         config.SDKConfig
	retryPolicy retry.Policy
	sessionID   string

	source AdSource
	cache  AdCache

	logger      *telemetry.Logger
	eventLog    *telemetry.Logger
	logPipeline *telemetry.Pipeline[domain.LogRecord]
	reporter    *telemetry.Reporter

	mu          sync.Mutex
	state       State
	permissions []string

	cacheCloser io.Closer

	rootCtx context.Context
	cancel  context.CancelFunc
}

// Option overrides a dependency, primarily for tests.
type Option func(*SDK)

// WithAdSource replaces the upstream ad client.
func WithAdSource(src AdSource) Option {
	return func(s *SDK) { s.source = src }
}

// WithCache wires an ad cache.
func WithCache(c AdCache) Option {
	return func(s *SDK) { s.cache = c }
}

// New constructs an SDK instance. No network happens until Initialize.
// The instance owns its telemetry pipelines and timers; Destroy
// releases them.
func New(cfg config.SDKConfig, opts ...Option) *SDK {
	pipelineCfg := cfg.Telemetry.PipelineConfig()

	logCfg := pipelineCfg
	logCfg.RemoteEndpoint = channelEndpoint(pipelineCfg.RemoteEndpoint, "logs")
	logPipeline := telemetry.NewPipeline[domain.LogRecord](logCfg, "logs", nil, nil)

	reportCfg := pipelineCfg
	reportCfg.RemoteEndpoint = channelEndpoint(pipelineCfg.RemoteEndpoint, "errors")
	reporter := telemetry.NewReporter(reportCfg, nil)

	logger := telemetry.NewLogger(telemetry.LoggerConfig{
		Level:         cfg.Logger.Level,
		EnableConsole: cfg.Logger.EnableConsole,
		EnableRemote:  cfg.Logger.EnableRemote,
	}, logPipeline)

	ctx, cancel := context.WithCancel(context.Background())
	s := &SDK{
		cfg:         cfg,
		retryPolicy: cfg.Retry.Policy(),
		sessionID:   uuid.New().String(),
		source:      adserver.NewClient(cfg.AdServerURL, cfg.APIKey, cfg.RequestTimeout.Std()),
		logger:      logger,
		eventLog:    logger.WithCategory("events"),
		logPipeline: logPipeline,
		reporter:    reporter,
		rootCtx:     ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cache == nil && cfg.Cache.Enabled {
		cache, err := redisclient.NewCache(cfg.Cache.Redis)
		if err != nil {
			// Cache is soft-fail by design: degrade to upstream fetches.
			logger.Warn("ad cache unavailable", map[string]any{"error": err.Error()})
		} else {
			s.cache = cache
			s.cacheCloser = cache
		}
	}
	return s
}

// channelEndpoint resolves a per-channel submission URL from the
// configured endpoint base.
func channelEndpoint(base, channel string) string {
	if base == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/v1/" + channel
}

// State returns the current lifecycle state.
func (s *SDK) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns this instance's session identifier.
func (s *SDK) SessionID() string {
	return s.sessionID
}

// Permissions returns the permission set granted at initialization.
func (s *SDK) Permissions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.permissions...)
}

// Initialize validates the configuration and performs the permission
// check through the retry engine. On failure the state stays
// uninitialized and the underlying error propagates.
func (s *SDK) Initialize(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateDestroyed:
		s.mu.Unlock()
		return s.integrationError("initialize called on destroyed SDK", errs.CodeDestroyed)
	case StateInitializing, StateInitialized:
		s.mu.Unlock()
		return s.integrationError("initialize called twice", errs.CodeInitFailed)
	}

	if len(strings.TrimSpace(s.cfg.APIKey)) < minAPIKeyLength {
		s.mu.Unlock()
		return s.integrationError("apiKey is missing or too short", errs.CodeInitFailed)
	}

	s.state = StateInitializing
	s.mu.Unlock()

	perms, err := retry.Do(ctx, "permissions_check", func(ctx context.Context) ([]string, error) {
		return s.source.CheckPermissions(ctx)
	}, s.retryPolicy)
	if err != nil {
		s.mu.Lock()
		if s.state == StateInitializing {
			s.state = StateUninitialized
		}
		s.mu.Unlock()
		return s.surfaceError(err)
	}

	s.mu.Lock()
	if s.state == StateDestroyed {
		// Destroyed while the permission check was in flight; discard.
		s.mu.Unlock()
		return s.integrationError("destroyed during initialization", errs.CodeDestroyed)
	}
	s.state = StateInitialized
	s.permissions = perms
	s.mu.Unlock()

	s.logger.Info("sdk initialized", map[string]any{
		"session_id":  s.sessionID,
		"permissions": perms,
	})
	s.TrackEvent(domain.Event{EventType: domain.EventTypeSDKInit})
	return nil
}

// RequestAd fetches an ad for a placement. The caller always receives a
// renderable ad: upstream failure after retry exhaustion substitutes a
// synthesized fallback. The only surfaced errors are lifecycle misuse
// and privacy violations.
func (s *SDK) RequestAd(ctx context.Context, placement domain.Placement, tc domain.TargetingContext) (*domain.Ad, error) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	switch state {
	case StateDestroyed:
		return nil, s.integrationError("requestAd called on destroyed SDK", errs.CodeDestroyed)
	case StateUninitialized, StateInitializing:
		return nil, s.integrationError("requestAd called before initialization", errs.CodeNotInitialized)
	}

	if s.cfg.PersonalizedAds && !s.cfg.ConsentGranted {
		return nil, s.privacyViolation("personalized ad requested without consent", errs.CodeConsentMissing)
	}

	start := time.Now()
	fp := Fingerprint(placement, tc)

	if s.cache != nil {
		if ad := s.cache.Get(ctx, fp); ad != nil {
			metrics.AdRequests.WithLabelValues(string(placement), "cache_hit").Inc()
			return ad, nil
		}
	}

	ad, err := retry.Do(ctx, "ad_fetch", func(ctx context.Context) (*domain.Ad, error) {
		return s.source.FetchAd(ctx, placement, tc, s.sessionID)
	}, s.retryPolicy)
	if err != nil {
		ad = s.recoverAdServing(placement, fp, err)
		metrics.AdRequests.WithLabelValues(string(placement), "fallback").Inc()
		metrics.AdRequestLatency.WithLabelValues(string(placement)).Observe(time.Since(start).Seconds())
		return ad, nil
	}

	if s.cache != nil {
		s.cache.Set(ctx, fp, ad)
	}
	metrics.AdRequests.WithLabelValues(string(placement), "ok").Inc()
	metrics.AdRequestLatency.WithLabelValues(string(placement)).Observe(time.Since(start).Seconds())
	return ad, nil
}

// TrackEvent enqueues an event into the telemetry pipeline. It never
// blocks and never fails; events on a destroyed SDK are dropped.
func (s *SDK) TrackEvent(event domain.Event) {
	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if event.EmittedAt == 0 {
		event.EmittedAt = time.Now().Unix()
	}
	if event.SessionID == "" {
		event.SessionID = s.sessionID
	}

	s.eventLog.Info(string(event.EventType), map[string]any{
		"placement":  string(event.Placement),
		"ad_id":      event.AdID,
		"session_id": event.SessionID,
		"emitted_at": event.EmittedAt,
		"metadata":   event.Metadata,
	})
}

// Destroy transitions to the terminal state, flushes telemetry and
// cancels all timers. It is idempotent and never fails.
func (s *SDK) Destroy() {
	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		return
	}
	s.state = StateDestroyed
	s.mu.Unlock()

	s.eventLog.Info(string(domain.EventTypeSDKDestroy), map[string]any{
		"session_id": s.sessionID,
	})

	s.cancel()
	s.logPipeline.Close()
	s.reporter.Close()
	if s.cacheCloser != nil {
		_ = s.cacheCloser.Close()
	}
}
