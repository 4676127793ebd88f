package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/adreach/adsdk/internal/core/domain"
	"github.com/lmittmann/tint"
)

// LevelCritical extends slog's built-in levels for the console channel.
const LevelCritical = slog.LevelError + 4

// LoggerConfig holds logger settings.
type LoggerConfig struct {
	Level         string
	EnableConsole bool
	EnableRemote  bool
}

// Logger is the SDK's structured logger. Local console output happens
// synchronously at call time; remote batching is an independent side
// channel through the shared pipeline. Child loggers fix their own
// category but share the parent's thresholds, console handler and
// pipeline; closing the parent's pipeline is the owner's concern, not
// the child's.
type Logger struct {
	minLevel domain.Level
	category string

	console  *slog.Logger
	pipeline *Pipeline[domain.LogRecord]
}

// NewLogger creates a logger with a tint console handler. pipeline may
// be nil when remote batching is disabled.
func NewLogger(cfg LoggerConfig, pipeline *Pipeline[domain.LogRecord]) *Logger {
	return newLogger(os.Stderr, cfg, pipeline)
}

func newLogger(w io.Writer, cfg LoggerConfig, pipeline *Pipeline[domain.LogRecord]) *Logger {
	l := &Logger{
		minLevel: domain.ParseLevel(cfg.Level),
		category: "sdk",
		pipeline: pipeline,
	}
	if !cfg.EnableRemote {
		l.pipeline = nil
	}
	if cfg.EnableConsole {
		l.console = slog.New(tint.NewHandler(w, &tint.Options{
			Level:      slogLevel(l.minLevel),
			TimeFormat: time.RFC3339,
		}))
	}
	return l
}

// WithCategory returns a child logger tagged with its own category.
// The child shares the parent's thresholds, console channel and
// pipeline; it has no independent lifecycle.
func (l *Logger) WithCategory(category string) *Logger {
	child := *l
	child.category = category
	return &child
}

func (l *Logger) Debug(msg string, data map[string]any)    { l.log(domain.LevelDebug, msg, data) }
func (l *Logger) Info(msg string, data map[string]any)     { l.log(domain.LevelInfo, msg, data) }
func (l *Logger) Warn(msg string, data map[string]any)     { l.log(domain.LevelWarn, msg, data) }
func (l *Logger) Error(msg string, data map[string]any)    { l.log(domain.LevelError, msg, data) }
func (l *Logger) Critical(msg string, data map[string]any) { l.log(domain.LevelCritical, msg, data) }

func (l *Logger) log(level domain.Level, msg string, data map[string]any) {
	if l.console != nil && level >= l.minLevel {
		attrs := make([]any, 0, 2*len(data)+4)
		attrs = append(attrs, "category", l.category)
		if level == domain.LevelCritical {
			// Attention marker so criticals stand out in local output.
			attrs = append(attrs, "alert", "CRITICAL")
		}
		for k, v := range data {
			attrs = append(attrs, k, v)
		}
		l.console.Log(context.Background(), slogLevel(level), msg, attrs...)
	}

	if l.pipeline != nil {
		l.pipeline.Record(domain.LogRecord{
			Level:     level.String(),
			Category:  l.category,
			Message:   msg,
			Data:      data,
			Timestamp: time.Now(),
		})
	}
}

func slogLevel(level domain.Level) slog.Level {
	switch level {
	case domain.LevelDebug:
		return slog.LevelDebug
	case domain.LevelInfo:
		return slog.LevelInfo
	case domain.LevelWarn:
		return slog.LevelWarn
	case domain.LevelError:
		return slog.LevelError
	case domain.LevelCritical:
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}
