package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/finbuddy/backend/pkg/logger"
)

// ChannelsFor maps an urgency level to the ordered channel set used for
// delivery. The table is exhaustive over the closed urgency enum; an
// invalid urgency never reaches dispatch because submission validates it.
func ChannelsFor(u Urgency) []Channel {
	switch u {
	case UrgencyCritical:
		return []Channel{ChannelPush, ChannelInApp, ChannelEmail}
	case UrgencyHigh:
		return []Channel{ChannelPush, ChannelInApp}
	case UrgencyMedium:
		return []Channel{ChannelInApp}
	case UrgencyLow:
		return []Channel{ChannelInApp}
	}
	return nil
}

// Sender delivers a notification to one user through one external
// channel. Implementations wrap push gateways, email providers, SMS
// gateways and the like. The engine only guarantees the call is made;
// transport outcome is best-effort.
type Sender interface {
	Send(ctx context.Context, userID string, n Notification) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, userID string, n Notification) error

func (f SenderFunc) Send(ctx context.Context, userID string, n Notification) error {
	return f(ctx, userID, n)
}

// Dispatcher fans a notification out through its selected channels.
// Every channel send is independent and fire-and-forget: a failure or
// timeout in one channel is logged and never blocks the others, nor the
// notification being stored.
type Dispatcher struct {
	senders     map[Channel]Sender
	logger      *slog.Logger
	sendTimeout time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSender registers an external sender for a channel. In-app needs no
// sender: store placement is the delivery.
func WithSender(ch Channel, s Sender) DispatcherOption {
	return func(d *Dispatcher) {
		if s != nil {
			d.senders[ch] = s
		}
	}
}

// WithSendTimeout bounds each external channel call so a slow sender
// cannot stall the decision/store path.
func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewDispatcher creates a Dispatcher. Channels without a registered
// sender are treated as no-ops, which keeps unconfigured deployments
// working with in-app delivery only.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		senders:     make(map[Channel]Sender),
		logger:      slog.Default(),
		sendTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends the notification through each channel in order.
// Failed or timed-out sends are logged and skipped; there is no retry
// and no rollback.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, n Notification, channels []Channel) {
	for _, ch := range channels {
		if ch == ChannelInApp {
			// No external side effect: the notification is already in the store.
			continue
		}
		sender, ok := d.senders[ch]
		if !ok {
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := sender.Send(sendCtx, userID, n)
		cancel()

		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(ErrSendTimeout, err)
		}
		if err != nil {
			d.logger.LogAttrs(ctx, slog.LevelWarn, "channel send failed",
				slog.String("notification_id", n.ID),
				logger.Channel(string(ch)),
				logger.UserID(userID),
				logger.Error(err),
			)
		}
	}
}
