package notify

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store and History.
// The notification collection is not partitioned by user: the engine
// state is single-tenant and lives only for the owning process, so
// Clear empties everyone's notifications by design.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications []Notification
	history       []DeliveryRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = append(s.notifications, n)
	return nil
}

// List filters and orders notifications. Ordering reproduces the
// historical engine behavior exactly: sort ascending by
// (urgency rank, created_at), then reverse the whole slice. Note that
// the reversal inverts the rank order too, so for equal timestamps low
// urgency sorts before critical. Callers depending on this order must
// not be broken by a "critical first" rewrite.
func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if opts.UnreadOnly && n.Read {
			continue
		}
		filtered = append(filtered, n)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Urgency.Rank() != filtered[j].Urgency.Rank() {
			return filtered[i].Urgency.Rank() < filtered[j].Urgency.Rank()
		}
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			break
		}
	}
	return nil
}

func (s *MemoryStore) Dismiss(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Dismissed = true
			break
		}
	}
	return nil
}

func (s *MemoryStore) CountUnread(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = nil
	return nil
}

// AppendHistory implements the History interface.
func (s *MemoryStore) AppendHistory(ctx context.Context, rec DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, rec)
	return nil
}

func (s *MemoryStore) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.history {
		if rec.UserID == userID && rec.SentAt.After(since) {
			count++
		}
	}
	return count, nil
}

// ClearHistory removes all history entries.
func (s *MemoryStore) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	return nil
}

// memoryHistory adapts MemoryStore's history half to the History
// interface, whose Append/Clear names collide with Store's.
type memoryHistory struct {
	store *MemoryStore
}

// HistoryView returns the store's delivery history as a History.
func (s *MemoryStore) HistoryView() History {
	return memoryHistory{store: s}
}

func (h memoryHistory) Append(ctx context.Context, rec DeliveryRecord) error {
	return h.store.AppendHistory(ctx, rec)
}

func (h memoryHistory) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return h.store.CountSince(ctx, userID, since)
}

func (h memoryHistory) Clear(ctx context.Context) error {
	return h.store.ClearHistory(ctx)
}
