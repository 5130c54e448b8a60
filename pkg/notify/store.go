package notify

import (
	"context"
	"time"
)

// Store handles notification persistence and retrieval for the engine.
// The store is append-only except for read/dismiss flag mutation and
// full clear; single notifications are never physically removed.
type Store interface {
	// Append stores a new notification.
	Append(ctx context.Context, n Notification) error

	// List returns notifications ordered per ListOptions.
	List(ctx context.Context, opts ListOptions) ([]Notification, error)

	// MarkRead sets the read flag. Idempotent; unknown ids are a no-op.
	MarkRead(ctx context.Context, id string) error

	// Dismiss sets the dismissed flag. Idempotent; unknown ids are a no-op.
	Dismiss(ctx context.Context, id string) error

	// CountUnread returns the number of unread notifications.
	CountUnread(ctx context.Context) (int, error)

	// Clear empties the entire store.
	Clear(ctx context.Context) error
}

// ListOptions provides filtering options for listing notifications.
type ListOptions struct {
	UnreadOnly bool // return only notifications with Read == false
	Limit      int  // maximum number of results (0 = no limit)
}

// History records delivered notifications and answers frequency queries
// for the throttle policy. Entries are append-only and removed only by
// bulk clear.
type History interface {
	// Append records one delivered notification occurrence.
	Append(ctx context.Context, rec DeliveryRecord) error

	// CountSince returns the number of records for userID with
	// SentAt strictly after the given instant.
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)

	// Clear removes all history entries.
	Clear(ctx context.Context) error
}
