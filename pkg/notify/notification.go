package notify

import (
	"time"
)

// Urgency represents the notification urgency level.
type Urgency string

const (
	UrgencyCritical Urgency = "critical" // immediate action required
	UrgencyHigh     Urgency = "high"     // important warning
	UrgencyMedium   Urgency = "medium"   // helpful suggestion
	UrgencyLow      Urgency = "low"      // celebration/info
)

// Valid reports whether u is one of the four defined urgency levels.
// No fallback level is ever synthesized; callers must supply a valid one.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

// Rank returns the severity rank used for ordering: critical=0 < high=1
// < medium=2 < low=3. Invalid urgencies rank after low.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 3
	}
	return 4
}

// Channel represents a delivery channel.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Action represents a call-to-action button attached to a notification.
type Action struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Notification is the core domain model. It is immutable after creation
// except for the Read and Dismissed flags, which are mutated only through
// the store operations.
type Notification struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Message       string         `json:"message"`
	Urgency       Urgency        `json:"urgency"`
	AgentName     string         `json:"agent_name"`
	ActionButtons []Action       `json:"action_buttons,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Read          bool           `json:"read"`
	Dismissed     bool           `json:"dismissed"`
}

// DeliveryRecord is an append-only history entry describing one delivered
// notification occurrence. It exists solely to compute recent delivery
// frequency for the throttle policy.
type DeliveryRecord struct {
	UserID         string    `json:"user_id"`
	NotificationID string    `json:"notification_id"`
	SentAt         time.Time `json:"sent_at"`
	Channels       []Channel `json:"channels"`
}
