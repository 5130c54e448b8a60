package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finbuddy/backend/pkg/logger"
)

const (
	// digestAgentName attributes digest notifications.
	digestAgentName = "digest_service"

	// digestTitleLimit caps how many unread titles a digest enumerates.
	digestTitleLimit = 5
)

// SubmitRequest carries the caller-supplied fields of a candidate
// notification. The engine constructs the Notification itself.
type SubmitRequest struct {
	Title         string         `json:"title"`
	Message       string         `json:"message"`
	Urgency       Urgency        `json:"urgency"`
	AgentName     string         `json:"agent_name"`
	ActionButtons []Action       `json:"action_buttons,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// Engine is the proactive notification decision engine. It owns its
// store and delivery history and is constructed once per process, then
// handed to adapters; there is no package-level instance.
type Engine struct {
	store      Store
	history    History
	policy     Policy
	dispatcher *Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger for the Engine.
func WithEngineLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// WithEngineClock injects a time source for tests.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an Engine. A nil dispatcher disables external
// channel sends; a nil policy delivers everything.
func NewEngine(store Store, history History, policy Policy, dispatcher *Dispatcher, opts ...EngineOption) *Engine {
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	e := &Engine{
		store:      store,
		history:    history,
		policy:     policy,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit runs a candidate notification through the decision pipeline.
// The created Notification is always returned, even when the policy
// suppressed delivery; suppressed occurrences are not stored and will
// not appear in later retrieval or digests. Only validation fails hard.
func (e *Engine) Submit(ctx context.Context, userID string, req SubmitRequest) (Notification, error) {
	if !req.Urgency.Valid() {
		return Notification{}, fmt.Errorf("%w: %q", ErrInvalidUrgency, req.Urgency)
	}

	n := Notification{
		ID:            uuid.New().String(),
		Title:         req.Title,
		Message:       req.Message,
		Urgency:       req.Urgency,
		AgentName:     req.AgentName,
		ActionButtons: req.ActionButtons,
		Data:          req.Data,
		CreatedAt:     e.now(),
	}

	if e.policy != nil && !e.policy.ShouldDeliver(ctx, userID, n) {
		e.logger.LogAttrs(ctx, slog.LevelInfo, "notification suppressed",
			slog.String("notification_id", n.ID),
			slog.String("urgency", string(n.Urgency)),
			slog.String("title", n.Title),
			logger.UserID(userID),
		)
		return n, nil
	}

	channels := ChannelsFor(n.Urgency)

	// Store first so in-app delivery is already satisfied; external
	// sends are best effort after that.
	if err := e.store.Append(ctx, n); err != nil {
		return Notification{}, fmt.Errorf("failed to store notification: %w", err)
	}
	if err := e.history.Append(ctx, DeliveryRecord{
		UserID:         userID,
		NotificationID: n.ID,
		SentAt:         e.now(),
		Channels:       channels,
	}); err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record delivery history",
			slog.String("notification_id", n.ID),
			logger.UserID(userID),
			logger.Error(err),
		)
	}

	e.dispatcher.Dispatch(ctx, userID, n, channels)

	e.logger.LogAttrs(ctx, slog.LevelInfo, "notification delivered",
		slog.String("notification_id", n.ID),
		slog.String("urgency", string(n.Urgency)),
		logger.AgentName(n.AgentName),
		logger.UserID(userID),
	)
	return n, nil
}

// List returns stored notifications ordered per the store contract.
func (e *Engine) List(ctx context.Context, opts ListOptions) ([]Notification, error) {
	return e.store.List(ctx, opts)
}

// MarkRead marks a notification as read. Unknown ids are a no-op.
func (e *Engine) MarkRead(ctx context.Context, id string) error {
	return e.store.MarkRead(ctx, id)
}

// Dismiss marks a notification as dismissed. The record stays in the
// store; its own flag excludes it from user-facing unread views.
// Unknown ids are a no-op.
func (e *Engine) Dismiss(ctx context.Context, id string) error {
	return e.store.Dismiss(ctx, id)
}

// CountUnread returns the number of unread notifications.
func (e *Engine) CountUnread(ctx context.Context) (int, error) {
	return e.store.CountUnread(ctx)
}

// ClearAll empties the store and the delivery history. The engine state
// is single-tenant, so this clears everything regardless of userID; the
// parameter is kept for attribution in logs.
func (e *Engine) ClearAll(ctx context.Context, userID string) error {
	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	if err := e.history.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear delivery history: %w", err)
	}
	e.logger.LogAttrs(ctx, slog.LevelInfo, "all notifications cleared",
		logger.UserID(userID),
	)
	return nil
}

// Digest summarizes unread notifications into a single low-urgency
// notification submitted through the full decision+dispatch pipeline.
// With no unread notifications it produces nothing and returns nil.
func (e *Engine) Digest(ctx context.Context, userID string) (*Notification, error) {
	unread, err := e.store.List(ctx, ListOptions{UnreadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list unread notifications: %w", err)
	}
	if len(unread) == 0 {
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d financial insights:\n", len(unread))
	for i, n := range unread {
		if i == digestTitleLimit {
			break
		}
		fmt.Fprintf(&b, "• %s\n", n.Title)
	}

	digest, err := e.Submit(ctx, userID, SubmitRequest{
		Title:     "Your Daily Financial Digest",
		Message:   b.String(),
		Urgency:   UrgencyLow,
		AgentName: digestAgentName,
	})
	if err != nil {
		return nil, err
	}
	return &digest, nil
}
