package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbuddy/backend/pkg/notify"
)

func TestDispatcherDispatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n := notify.Notification{ID: "n1", Title: "t", Urgency: notify.UrgencyCritical}

	t.Run("sends through registered channels", func(t *testing.T) {
		t.Parallel()

		var sent []notify.Channel
		sender := func(ch notify.Channel) notify.SenderFunc {
			return func(ctx context.Context, userID string, n notify.Notification) error {
				sent = append(sent, ch)
				return nil
			}
		}

		d := notify.NewDispatcher(
			notify.WithSender(notify.ChannelPush, sender(notify.ChannelPush)),
			notify.WithSender(notify.ChannelEmail, sender(notify.ChannelEmail)),
		)
		d.Dispatch(ctx, "u1", n, notify.ChannelsFor(notify.UrgencyCritical))

		assert.Equal(t, []notify.Channel{notify.ChannelPush, notify.ChannelEmail}, sent)
	})

	t.Run("in-app never reaches a sender", func(t *testing.T) {
		t.Parallel()

		called := false
		d := notify.NewDispatcher(
			notify.WithSender(notify.ChannelInApp, notify.SenderFunc(func(ctx context.Context, userID string, n notify.Notification) error {
				called = true
				return nil
			})),
		)
		d.Dispatch(ctx, "u1", n, []notify.Channel{notify.ChannelInApp})

		assert.False(t, called)
	})

	t.Run("unregistered channels are skipped", func(t *testing.T) {
		t.Parallel()

		d := notify.NewDispatcher()
		// Must not panic or error with no senders at all.
		d.Dispatch(ctx, "u1", n, notify.ChannelsFor(notify.UrgencyCritical))
	})

	t.Run("one failing channel does not block the rest", func(t *testing.T) {
		t.Parallel()

		emailSent := false
		d := notify.NewDispatcher(
			notify.WithSender(notify.ChannelPush, notify.SenderFunc(func(ctx context.Context, userID string, n notify.Notification) error {
				return errors.New("gateway down")
			})),
			notify.WithSender(notify.ChannelEmail, notify.SenderFunc(func(ctx context.Context, userID string, n notify.Notification) error {
				emailSent = true
				return nil
			})),
		)
		d.Dispatch(ctx, "u1", n, notify.ChannelsFor(notify.UrgencyCritical))

		assert.True(t, emailSent)
	})

	t.Run("send context carries the timeout", func(t *testing.T) {
		t.Parallel()

		var deadline time.Time
		d := notify.NewDispatcher(
			notify.WithSendTimeout(100*time.Millisecond),
			notify.WithSender(notify.ChannelPush, notify.SenderFunc(func(ctx context.Context, userID string, n notify.Notification) error {
				var ok bool
				deadline, ok = ctx.Deadline()
				require.True(t, ok)
				return nil
			})),
		)
		d.Dispatch(ctx, "u1", n, []notify.Channel{notify.ChannelPush})

		assert.WithinDuration(t, time.Now().Add(100*time.Millisecond), deadline, time.Second)
	})
}
