package config

import (
	redisclient "github.com/adreach/adsdk/internal/infra/redis"
	"github.com/adreach/adsdk/internal/infra/storage/postgres"
	"github.com/adreach/adsdk/internal/retry"
	"github.com/adreach/adsdk/internal/telemetry"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	SDK       SDKConfig       `yaml:"sdk"`
	Collector CollectorConfig `yaml:"collector"`
}

// SDKConfig holds the SDK-side settings. PersonalizedAds and
// ConsentGranted are opaque compliance flags supplied by the host
// application; the SDK only enforces their combination.
type SDKConfig struct {
	APIKey          string          `yaml:"api_key"`
	AdServerURL     string          `yaml:"ad_server_url"`
	DocsBaseURL     string          `yaml:"docs_base_url"`
	RequestTimeout  Duration        `yaml:"request_timeout"`
	PersonalizedAds bool            `yaml:"personalized_ads"`
	ConsentGranted  bool            `yaml:"consent_granted"`
	Retry           RetryConfig     `yaml:"retry"`
	Telemetry       TelemetryConfig `yaml:"telemetry"`
	Logger          LoggerConfig    `yaml:"logger"`
	Cache           CacheConfig     `yaml:"cache"`
}

// RetryConfig holds retry engine settings.
type RetryConfig struct {
	MaxAttempts       int      `yaml:"max_attempts"`
	BaseDelay         Duration `yaml:"base_delay"`
	MaxDelay          Duration `yaml:"max_delay"`
	BackoffMultiplier float64  `yaml:"backoff_multiplier"`
	Jitter            *bool    `yaml:"jitter"`
}

// Policy converts the config into a retry.Policy, filling defaults.
func (r RetryConfig) Policy() retry.Policy {
	p := retry.DefaultPolicy
	if r.MaxAttempts > 0 {
		p.MaxAttempts = r.MaxAttempts
	}
	if r.BaseDelay > 0 {
		p.BaseDelay = r.BaseDelay.Std()
	}
	if r.MaxDelay > 0 {
		p.MaxDelay = r.MaxDelay.Std()
	}
	if r.BackoffMultiplier >= 1 {
		p.BackoffMultiplier = r.BackoffMultiplier
	}
	if r.Jitter != nil {
		p.Jitter = *r.Jitter
	}
	return p
}

// TelemetryConfig holds telemetry pipeline settings.
type TelemetryConfig struct {
	EnableRemote         bool              `yaml:"enable_remote"`
	RemoteEndpoint       string            `yaml:"remote_endpoint"`
	BatchSize            int               `yaml:"batch_size"`
	FlushInterval        Duration          `yaml:"flush_interval"`
	IncludeSensitiveData bool              `yaml:"include_sensitive_data"`
	IncludeStackTrace    bool              `yaml:"include_stack_trace"`
	Headers              map[string]string `yaml:"headers"`
}

// PipelineConfig converts the config into a telemetry.Config.
func (t TelemetryConfig) PipelineConfig() telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.EnableRemote = t.EnableRemote
	cfg.RemoteEndpoint = t.RemoteEndpoint
	if t.BatchSize > 0 {
		cfg.BatchSize = t.BatchSize
	}
	if t.FlushInterval > 0 {
		cfg.FlushInterval = t.FlushInterval.Std()
	}
	cfg.IncludeSensitiveData = t.IncludeSensitiveData
	cfg.IncludeStackTrace = t.IncludeStackTrace
	cfg.Headers = t.Headers
	return cfg
}

// LoggerConfig holds logger settings.
type LoggerConfig struct {
	Level         string `yaml:"level"` // debug, info, warn, error, critical
	EnableConsole bool   `yaml:"enable_console"`
	EnableRemote  bool   `yaml:"enable_remote"`
}

// CacheConfig holds ad cache settings.
type CacheConfig struct {
	Enabled bool               `yaml:"enabled"`
	Redis   redisclient.Config `yaml:"redis"`
}

// CollectorConfig holds the collector service settings.
type CollectorConfig struct {
	Port            int             `yaml:"port"`
	Database        postgres.Config `yaml:"database"`
	RetentionPeriod Duration        `yaml:"retention_period"` // 0 = infinite
}
