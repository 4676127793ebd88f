package errs

import (
	"fmt"
	"time"
)

// Category classifies an error into one of the four handling strategies.
// The set is closed: switches over Category can be exhaustive.
type Category string

const (
	CategoryNetwork        Category = "network"
	CategoryPrivacy        Category = "privacy"
	CategoryAdServing      Category = "ad_serving"
	CategorySDKIntegration Category = "sdk_integration"
)

// Severity ranks how bad an error is for reporting purposes.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// DefaultDocsBaseURL is used for troubleshooting links when no docs base
// is configured.
const DefaultDocsBaseURL = "https://docs.adreach.dev/errors"

// Context carries diagnostic information attached to an error at
// construction time. It is not modified afterwards.
type Context struct {
	Timestamp      time.Time
	SessionID      string
	UserID         string
	AdditionalData map[string]any
}

// NewContext returns a Context stamped with the current time.
func NewContext() Context {
	return Context{Timestamp: time.Now()}
}

// Error is a classified SDK error. Category, default severity and
// retryability are fixed by the constructor used; callers cannot produce
// an inconsistent combination (a privacy violation is never retryable).
type Error struct {
	Code      string
	Category  Category
	Severity  Severity
	Message   string
	Retryable bool
	Context   Context
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s/%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Category, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// TroubleshootingURL derives the docs link for this error.
func (e *Error) TroubleshootingURL(docsBase string) string {
	if docsBase == "" {
		docsBase = DefaultDocsBaseURL
	}
	return docsBase + "/" + string(e.Category) + "/" + e.Code
}

// Option tweaks constructor defaults where the taxonomy allows it.
type Option func(*Error)

// WithSeverity overrides the variant's default severity.
func WithSeverity(s Severity) Option {
	return func(e *Error) { e.Severity = s }
}

// WithRetryable overrides retryability on variants where it is
// configurable (ad serving). Constructors for fixed variants ignore it.
func WithRetryable(r bool) Option {
	return func(e *Error) { e.Retryable = r }
}

// WithCause attaches the underlying error.
func WithCause(cause error) Option {
	return func(e *Error) { e.Cause = cause }
}

// NewNetwork builds a transient network error. Retryable.
func NewNetwork(message, code string, ctx Context, opts ...Option) *Error {
	e := &Error{
		Code:      code,
		Category:  CategoryNetwork,
		Severity:  SeverityHigh,
		Message:   message,
		Retryable: true,
		Context:   ctx,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Category = CategoryNetwork
	return e
}

// NewPrivacyViolation builds a consent/regulatory breach error.
// Always critical, never retryable regardless of options.
func NewPrivacyViolation(message, code string, ctx Context, opts ...Option) *Error {
	e := &Error{
		Code:      code,
		Category:  CategoryPrivacy,
		Severity:  SeverityCritical,
		Message:   message,
		Retryable: false,
		Context:   ctx,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Category = CategoryPrivacy
	e.Retryable = false
	e.Severity = SeverityCritical
	return e
}

// NewAdServing wraps an upstream ad-source failure. Retryability is
// configurable via WithRetryable; defaults to false.
func NewAdServing(message, code string, ctx Context, opts ...Option) *Error {
	e := &Error{
		Code:      code,
		Category:  CategoryAdServing,
		Severity:  SeverityMedium,
		Message:   message,
		Retryable: false,
		Context:   ctx,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Category = CategoryAdServing
	return e
}

// NewSDKIntegration builds a misuse/misconfiguration error. Never retryable.
func NewSDKIntegration(message, code string, ctx Context, opts ...Option) *Error {
	e := &Error{
		Code:      code,
		Category:  CategorySDKIntegration,
		Severity:  SeverityHigh,
		Message:   message,
		Retryable: false,
		Context:   ctx,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Category = CategorySDKIntegration
	e.Retryable = false
	return e
}

// Stable error codes used by the facade.
const (
	CodeInitFailed     = "init-failed"
	CodeNotInitialized = "not-initialized"
	CodeDestroyed      = "sdk-destroyed"
	CodeRetryExhausted = "retry-exhausted"
	CodeAdFetchFailed  = "ad-fetch-failed"
	CodeConsentMissing = "consent-missing"
)
