package fallback

import (
	"time"

	"github.com/adreach/adsdk/internal/core/domain"
	"github.com/google/uuid"
)

// TTL is how long a synthesized ad stays valid.
const TTL = 5 * time.Minute

// Synthesize produces a deterministic placeholder ad for a placement.
// The ID carries the fallback marker plus a unique suffix and the title
// is fixed, so callers can tell fallbacks from real ads without
// inspecting internal flags. This operation never fails.
func Synthesize(placement domain.Placement) *domain.Ad {
	now := time.Now()
	return &domain.Ad{
		ID: domain.FallbackIDPrefix + string(placement) + "_" + uuid.New().String(),
		Content: domain.AdContent{
			Title:       domain.FallbackTitle,
			Description: "Sponsored content",
			CTAText:     "Learn More",
			BrandName:   "Sponsored",
		},
		CreatedAt: now,
		ExpiresAt: now.Add(TTL),
	}
}
