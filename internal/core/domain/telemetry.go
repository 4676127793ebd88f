package domain

import "time"

// Level is the severity of a log record.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseLevel maps a config string to a Level. Unknown strings default to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "critical":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// LogRecord is a structured log entry pending batched submission.
type LogRecord struct {
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ErrorReport is a classified error flattened for submission.
type ErrorReport struct {
	Code           string         `json:"code"`
	Category       string         `json:"category"`
	Severity       string         `json:"severity"`
	Message        string         `json:"message"`
	Retryable      bool           `json:"retryable"`
	Timestamp      time.Time      `json:"timestamp"`
	SessionID      string         `json:"session_id,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	AdditionalData map[string]any `json:"additional_data,omitempty"`
	StackTrace     string         `json:"stack_trace,omitempty"`
	Fingerprint    string         `json:"fingerprint,omitempty"`
}
