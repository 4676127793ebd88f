package domain

import (
	"strings"
	"time"
)

// FallbackIDPrefix marks ads synthesized locally instead of served upstream.
const FallbackIDPrefix = "fallback_"

// FallbackTitle is the fixed title of every synthesized fallback ad.
const FallbackTitle = "Advertisement"

// Ad is a renderable ad unit as consumed by the display layer.
type Ad struct {
	ID        string    `json:"id"`
	Content   AdContent `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdContent holds the displayable fields of an ad.
type AdContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CTAText     string `json:"cta_text"`
	ImageURL    string `json:"image_url,omitempty"`
	LandingURL  string `json:"landing_url,omitempty"`
	BrandName   string `json:"brand_name"`
}

// IsFallback reports whether the ad was synthesized locally.
func (a *Ad) IsFallback() bool {
	return strings.HasPrefix(a.ID, FallbackIDPrefix)
}

// Expired reports whether the ad is past its expiry at the given instant.
func (a *Ad) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && now.After(a.ExpiresAt)
}

// Placement identifies the slot an ad is requested for.
type Placement string

// TargetingContext is the opaque context descriptor produced by the
// targeting collaborator. It is passed through to the ad request path
// unmodified; keys and values are not interpreted here.
type TargetingContext map[string]string
