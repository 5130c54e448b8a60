package notify_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbuddy/backend/pkg/notify"
)

// allowAll is a Policy that never suppresses.
type allowAll struct{}

func (allowAll) ShouldDeliver(ctx context.Context, userID string, n notify.Notification) bool {
	return true
}

// denyAll is a Policy that always suppresses.
type denyAll struct{}

func (denyAll) ShouldDeliver(ctx context.Context, userID string, n notify.Notification) bool {
	return false
}

func newTestEngine(store *notify.MemoryStore, policy notify.Policy, at time.Time) *notify.Engine {
	return notify.NewEngine(store, store.HistoryView(), policy, nil,
		notify.WithEngineClock(func() time.Time { return at }),
	)
}

func TestEngineSubmit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("rejects invalid urgency", func(t *testing.T) {
		t.Parallel()

		store := notify.NewMemoryStore()
		engine := newTestEngine(store, allowAll{}, at)

		_, err := engine.Submit(ctx, "u1", notify.SubmitRequest{
			Title:   "bad",
			Urgency: "urgent",
		})
		require.ErrorIs(t, err, notify.ErrInvalidUrgency)

		got, err := store.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("round-trips every field through the store", func(t *testing.T) {
		t.Parallel()

		store := notify.NewMemoryStore()
		engine := newTestEngine(store, allowAll{}, at)

		req := notify.SubmitRequest{
			Title:     "Balance Alert",
			Message:   "Your balance dropped below ₹500",
			Urgency:   notify.UrgencyHigh,
			AgentName: "account_monitor",
			ActionButtons: []notify.Action{
				{Label: "View Account", Action: "open_account"},
			},
			Data: map[string]any{"balance": 420.5},
		}
		created, err := engine.Submit(ctx, "u1", req)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, at, created.CreatedAt)
		assert.False(t, created.Read)
		assert.False(t, created.Dismissed)

		got, err := engine.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, created, got[0])
		assert.Equal(t, req.Title, got[0].Title)
		assert.Equal(t, req.Message, got[0].Message)
		assert.Equal(t, req.Urgency, got[0].Urgency)
		assert.Equal(t, req.AgentName, got[0].AgentName)
		assert.Equal(t, req.ActionButtons, got[0].ActionButtons)
		assert.Equal(t, req.Data, got[0].Data)
	})

	t.Run("suppressed notification is returned but not stored", func(t *testing.T) {
		t.Parallel()

		store := notify.NewMemoryStore()
		engine := newTestEngine(store, denyAll{}, at)

		n, err := engine.Submit(ctx, "u1", notify.SubmitRequest{
			Title:   "quiet",
			Urgency: notify.UrgencyLow,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, n.ID)

		got, err := store.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, got)

		count, err := store.CountSince(ctx, "u1", at.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, count, "suppressed deliveries must not enter history")
	})

	t.Run("delivery is recorded in history", func(t *testing.T) {
		t.Parallel()

		store := notify.NewMemoryStore()
		engine := newTestEngine(store, allowAll{}, at)

		_, err := engine.Submit(ctx, "u1", notify.SubmitRequest{
			Title:   "hello",
			Urgency: notify.UrgencyMedium,
		})
		require.NoError(t, err)

		count, err := store.CountSince(ctx, "u1", at.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

// TestEngineThrottleScenarios runs the full decision pipeline with the
// real throttle policy.
func TestEngineThrottleScenarios(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("sixth notification in an hour is suppressed unless high", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
		store := notify.NewMemoryStore()
		policy := notify.NewThrottlePolicy(store, notify.WithClock(func() time.Time { return at }))
		engine := newTestEngine(store, policy, at)

		for i := 0; i < 5; i++ {
			_, err := engine.Submit(ctx, "u1", notify.SubmitRequest{
				Title:   fmt.Sprintf("update %d", i),
				Urgency: notify.UrgencyMedium,
			})
			require.NoError(t, err)
		}

		_, err := engine.Submit(ctx, "u1", notify.SubmitRequest{Title: "sixth", Urgency: notify.UrgencyMedium})
		require.NoError(t, err)
		_, err = engine.Submit(ctx, "u1", notify.SubmitRequest{Title: "important", Urgency: notify.UrgencyHigh})
		require.NoError(t, err)

		got, err := store.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		require.Len(t, got, 6)
		for _, n := range got {
			assert.NotEqual(t, "sixth", n.Title)
		}
	})

	t.Run("late night delivers high but not low", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
		store := notify.NewMemoryStore()
		policy := notify.NewThrottlePolicy(store, notify.WithClock(func() time.Time { return at }))
		engine := newTestEngine(store, policy, at)

		_, err := engine.Submit(ctx, "u1", notify.SubmitRequest{Title: "fraud warning", Urgency: notify.UrgencyHigh})
		require.NoError(t, err)
		_, err = engine.Submit(ctx, "u1", notify.SubmitRequest{Title: "savings tip", Urgency: notify.UrgencyLow})
		require.NoError(t, err)

		got, err := store.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "fraud warning", got[0].Title)
	})

	t.Run("critical cuts through saturation at night", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
		store := notify.NewMemoryStore()
		for i := 0; i < 10; i++ {
			require.NoError(t, store.AppendHistory(ctx, notify.DeliveryRecord{
				UserID: "u1",
				SentAt: at.Add(-time.Minute),
			}))
		}
		policy := notify.NewThrottlePolicy(store, notify.WithClock(func() time.Time { return at }))
		engine := newTestEngine(store, policy, at)

		_, err := engine.Submit(ctx, "u1", notify.SubmitRequest{Title: "account compromised", Urgency: notify.UrgencyCritical})
		require.NoError(t, err)

		got, err := store.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		require.Len(t, got, 1)
	})
}

func TestEngineClearAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	store := notify.NewMemoryStore()
	engine := newTestEngine(store, allowAll{}, at)

	for i := 0; i < 3; i++ {
		_, err := engine.Submit(ctx, "u1", notify.SubmitRequest{Title: "n", Urgency: notify.UrgencyLow})
		require.NoError(t, err)
	}

	require.NoError(t, engine.ClearAll(ctx, "u1"))

	got, err := engine.List(ctx, notify.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)

	count, err := store.CountSince(ctx, "u1", at.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestEngineDigest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("no unread produces nothing", func(t *testing.T) {
		t.Parallel()

		store := notify.NewMemoryStore()
		engine := newTestEngine(store, allowAll{}, at)

		digest, err := engine.Digest(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, digest)

		got, err := store.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("read notifications are excluded", func(t *testing.T) {
		t.Parallel()

		store := notify.NewMemoryStore()
		engine := newTestEngine(store, allowAll{}, at)

		n, err := engine.Submit(ctx, "u1", notify.SubmitRequest{Title: "seen already", Urgency: notify.UrgencyLow})
		require.NoError(t, err)
		require.NoError(t, engine.MarkRead(ctx, n.ID))

		digest, err := engine.Digest(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, digest)
	})

	t.Run("seven unread enumerates exactly five titles", func(t *testing.T) {
		t.Parallel()

		store := notify.NewMemoryStore()
		engine := newTestEngine(store, allowAll{}, at)

		for i := 0; i < 7; i++ {
			_, err := engine.Submit(ctx, "u1", notify.SubmitRequest{
				Title:   fmt.Sprintf("insight %d", i),
				Urgency: notify.UrgencyLow,
			})
			require.NoError(t, err)
		}

		digest, err := engine.Digest(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, digest)

		assert.Equal(t, "Your Daily Financial Digest", digest.Title)
		assert.Equal(t, notify.UrgencyLow, digest.Urgency)
		assert.Equal(t, "digest_service", digest.AgentName)
		assert.True(t, strings.HasPrefix(digest.Message, "You have 7 financial insights:\n"))
		assert.Equal(t, 5, strings.Count(digest.Message, "• "), "digest enumerates at most five titles")

		// The digest itself went through the pipeline and is stored.
		got, err := store.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, got, 8)
	})

	t.Run("suppressed digest is not stored", func(t *testing.T) {
		t.Parallel()

		store := notify.NewMemoryStore()
		engine := newTestEngine(store, allowAll{}, at)
		_, err := engine.Submit(ctx, "u1", notify.SubmitRequest{Title: "unread", Urgency: notify.UrgencyLow})
		require.NoError(t, err)

		// Rebuild the engine with a deny-all policy so only the digest
		// submission is suppressed.
		suppressing := notify.NewEngine(store, store.HistoryView(), denyAll{}, nil,
			notify.WithEngineClock(func() time.Time { return at }),
		)
		digest, err := suppressing.Digest(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, digest)

		got, err := store.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
