package telemetry

import (
	"log/slog"
	"runtime/debug"

	"github.com/adreach/adsdk/internal/core/domain"
	"github.com/adreach/adsdk/internal/core/errs"
)

// Reporter queues classified errors for batched remote submission.
// Every occurrence is reported independently; there is no deduplication.
type Reporter struct {
	cfg      Config
	pipeline *Pipeline[domain.ErrorReport]
}

// NewReporter creates a reporter with its own pipeline on the "errors"
// channel.
func NewReporter(cfg Config, log *slog.Logger) *Reporter {
	return &Reporter{
		cfg:      cfg,
		pipeline: NewPipeline(cfg, "errors", sanitizeReport, log),
	}
}

// Report enqueues a classified error. It never blocks beyond the buffer
// append and never fails.
func (r *Reporter) Report(e *errs.Error, fingerprint string) {
	report := domain.ErrorReport{
		Code:           e.Code,
		Category:       string(e.Category),
		Severity:       string(e.Severity),
		Message:        e.Message,
		Retryable:      e.Retryable,
		Timestamp:      e.Context.Timestamp,
		SessionID:      e.Context.SessionID,
		UserID:         e.Context.UserID,
		AdditionalData: e.Context.AdditionalData,
		Fingerprint:    fingerprint,
	}
	if r.cfg.IncludeStackTrace {
		report.StackTrace = string(debug.Stack())
	}
	r.pipeline.Record(report)
}

// Flush drains the underlying pipeline immediately.
func (r *Reporter) Flush() {
	r.pipeline.Flush()
}

// Close shuts down the underlying pipeline, draining any buffered
// reports first.
func (r *Reporter) Close() {
	r.pipeline.Close()
}

// sanitizeReport strips user-identifying fields from a report. Applied
// per entry at submission time unless the pipeline is configured to
// include sensitive data.
func sanitizeReport(rep domain.ErrorReport) domain.ErrorReport {
	rep.UserID = ""
	rep.AdditionalData = nil
	return rep
}
