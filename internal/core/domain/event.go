package domain

// Event represents a tracked SDK event (impression, click, lifecycle).
type Event struct {
	EventType EventType      `json:"event_type"`
	Placement Placement      `json:"placement,omitempty"`
	AdID      string         `json:"ad_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	EmittedAt int64          `json:"emitted_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type EventType string

const (
	EventTypeImpression  EventType = "impression"
	EventTypeClick       EventType = "click"
	EventTypeAdRequested EventType = "ad_requested"
	EventTypeAdFailed    EventType = "ad_failed"
	EventTypeSDKInit     EventType = "sdk_init"
	EventTypeSDKDestroy  EventType = "sdk_destroy"
)
