package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/finbuddy/backend/pkg/logger"
)

// Policy decides whether a candidate notification is delivered
// immediately or suppressed. Suppressed notifications are dropped from
// the current occurrence entirely; later surfacing happens only through
// the digest path over what was stored.
type Policy interface {
	ShouldDeliver(ctx context.Context, userID string, n Notification) bool
}

// ThrottlePolicy prevents notification fatigue: it caps non-high-urgency
// volume during bursts and silences medium/low outside the user's
// active hours. Critical notifications always pass.
type ThrottlePolicy struct {
	history HistoryReader
	logger  *slog.Logger

	burstLimit  int
	burstWindow time.Duration
	activeFrom  int // first active local hour, inclusive
	activeUntil int // last active local hour, inclusive
	now         func() time.Time
}

// HistoryReader is the read-only slice of History the policy needs.
type HistoryReader interface {
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// ThrottleOption configures a ThrottlePolicy.
type ThrottleOption func(*ThrottlePolicy)

// WithBurstLimit overrides the per-hour delivery cap.
func WithBurstLimit(limit int, window time.Duration) ThrottleOption {
	return func(p *ThrottlePolicy) {
		if limit > 0 && window > 0 {
			p.burstLimit = limit
			p.burstWindow = window
		}
	}
}

// WithActiveHours overrides the active local-hour range (both inclusive).
func WithActiveHours(from, until int) ThrottleOption {
	return func(p *ThrottlePolicy) {
		p.activeFrom = from
		p.activeUntil = until
	}
}

// WithClock injects a time source, used by tests to pin the evaluation
// instant.
func WithClock(now func() time.Time) ThrottleOption {
	return func(p *ThrottlePolicy) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPolicyLogger sets the logger for the ThrottlePolicy.
func WithPolicyLogger(log *slog.Logger) ThrottleOption {
	return func(p *ThrottlePolicy) {
		if log != nil {
			p.logger = log
		}
	}
}

// NewThrottlePolicy creates a policy with the default thresholds:
// at most 5 deliveries per trailing hour for non-high urgency, active
// hours 9:00 through 22:00 local time.
func NewThrottlePolicy(history HistoryReader, opts ...ThrottleOption) *ThrottlePolicy {
	p := &ThrottlePolicy{
		history:     history,
		logger:      slog.Default(),
		burstLimit:  5,
		burstWindow: time.Hour,
		activeFrom:  9,
		activeUntil: 22,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ShouldDeliver evaluates the throttle rules in order; the first
// matching rule decides.
func (p *ThrottlePolicy) ShouldDeliver(ctx context.Context, userID string, n Notification) bool {
	if n.Urgency == UrgencyCritical {
		return true
	}

	now := p.now()

	recent, err := p.history.CountSince(ctx, userID, now.Add(-p.burstWindow))
	if err != nil {
		// A broken history backend must not silence the pipeline.
		p.logger.LogAttrs(ctx, slog.LevelWarn, "delivery history unavailable, skipping burst check",
			logger.UserID(userID),
			logger.Error(err),
		)
		recent = 0
	}
	if recent >= p.burstLimit && n.Urgency != UrgencyHigh {
		return false
	}

	hour := now.Hour()
	if hour < p.activeFrom || hour > p.activeUntil {
		return n.Urgency == UrgencyCritical || n.Urgency == UrgencyHigh
	}

	return true
}
