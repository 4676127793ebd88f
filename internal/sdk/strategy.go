package sdk

import (
	"errors"

	"github.com/adreach/adsdk/internal/core/domain"
	"github.com/adreach/adsdk/internal/core/errs"
	"github.com/adreach/adsdk/internal/fallback"
	"github.com/adreach/adsdk/internal/metrics"
)

// The four handling strategies, one per taxonomy variant. Network
// errors arrive here only after retry exhaustion; privacy and
// integration errors are handled synchronously at the call site; ad
// serving errors are recovered through a single fallback attempt.

// surfaceError reports and logs a classified error, then returns it to
// the caller. Non-classified errors pass through untouched.
func (s *SDK) surfaceError(err error) error {
	var ce *errs.Error
	if !errors.As(err, &ce) {
		return err
	}

	switch ce.Category {
	case errs.CategoryNetwork:
		// Terminal: the retry engine already exhausted its attempts.
		s.logger.Error(ce.Message, map[string]any{
			"code":  ce.Code,
			"docs":  ce.TroubleshootingURL(s.cfg.DocsBaseURL),
			"cause": causeString(ce),
		})
	case errs.CategoryPrivacy:
		s.logger.Critical(ce.Message, map[string]any{
			"code": ce.Code,
			"docs": ce.TroubleshootingURL(s.cfg.DocsBaseURL),
		})
	case errs.CategoryAdServing:
		s.logger.Error(ce.Message, map[string]any{
			"code": ce.Code,
			"docs": ce.TroubleshootingURL(s.cfg.DocsBaseURL),
		})
	case errs.CategorySDKIntegration:
		g := errs.GuidanceFor(ce.Code)
		s.logger.Error(ce.Message, map[string]any{
			"code":        ce.Code,
			"guidance":    g.Summary,
			"instruction": g.Instruction,
			"docs":        ce.TroubleshootingURL(s.cfg.DocsBaseURL),
		})
	}

	s.reporter.Report(ce, "")
	return ce
}

// integrationError builds, handles and returns an sdk_integration
// error: logged with troubleshooting guidance, reported, never retried.
func (s *SDK) integrationError(message, code string) error {
	ec := errs.NewContext()
	ec.SessionID = s.sessionID
	return s.surfaceError(errs.NewSDKIntegration(message, code, ec))
}

// privacyViolation builds and handles a privacy error: exactly one
// critical local log emission, queued for reporting, always surfaced.
// It is never passed to the retry engine.
func (s *SDK) privacyViolation(message, code string) error {
	ec := errs.NewContext()
	ec.SessionID = s.sessionID
	return s.surfaceError(errs.NewPrivacyViolation(message, code, ec))
}

// recoverAdServing applies the ad-serving strategy: the fallback
// producer is tried exactly once. The synthesizer cannot fail, so the
// caller always gets an ad; the upstream failure is still reported so
// recovery never hides it from telemetry.
func (s *SDK) recoverAdServing(placement domain.Placement, fingerprint string, primary error) *domain.Ad {
	ec := errs.NewContext()
	ec.SessionID = s.sessionID
	ec.AdditionalData = map[string]any{
		"placement":     string(placement),
		"primary_error": primary.Error(),
	}
	ce := errs.NewAdServing("upstream ad fetch failed, fallback substituted",
		errs.CodeAdFetchFailed, ec, errs.WithCause(primary))

	s.logger.Warn(ce.Message, map[string]any{
		"code":      ce.Code,
		"placement": string(placement),
		"docs":      ce.TroubleshootingURL(s.cfg.DocsBaseURL),
	})
	s.reporter.Report(ce, fingerprint)

	ad := fallback.Synthesize(placement)
	metrics.FallbacksServed.WithLabelValues(string(placement)).Inc()
	return ad
}

func causeString(ce *errs.Error) string {
	if ce.Cause == nil {
		return ""
	}
	return ce.Cause.Error()
}
