package alerts

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/finbuddy/backend/pkg/email"
	"github.com/finbuddy/backend/pkg/logger"
	"github.com/finbuddy/backend/pkg/notify"
)

// AddressResolver maps a user id to the email address notifications are
// delivered to. Deployments with an account system plug their lookup in
// here; StaticAddress covers the single-tenant case.
type AddressResolver func(ctx context.Context, userID string) (string, error)

// StaticAddress resolves every user to one fixed address.
func StaticAddress(addr string) AddressResolver {
	return func(ctx context.Context, userID string) (string, error) {
		return addr, nil
	}
}

// EmailSender adapts an email.EmailSender to the notify.Sender interface
// used by the dispatcher's email channel.
type EmailSender struct {
	mailer  email.EmailSender
	resolve AddressResolver
}

// NewEmailSender creates the email channel adapter.
func NewEmailSender(mailer email.EmailSender, resolve AddressResolver) *EmailSender {
	return &EmailSender{mailer: mailer, resolve: resolve}
}

// Send renders the notification as a small HTML email and hands it to
// the provider.
func (s *EmailSender) Send(ctx context.Context, userID string, n notify.Notification) error {
	addr, err := s.resolve(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve email address: %w", err)
	}
	return s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   addr,
		Subject:  n.Title,
		BodyHTML: renderBody(n),
		Tag:      "notification",
	})
}

func renderBody(n notify.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(n.Title))
	b.WriteString("<p>")
	b.WriteString(strings.ReplaceAll(html.EscapeString(n.Message), "\n", "<br>"))
	b.WriteString("</p>")
	if n.AgentName != "" {
		fmt.Fprintf(&b, "<p><small>Sent by %s</small></p>", html.EscapeString(n.AgentName))
	}
	return b.String()
}

// LogPushSender stands in for a real push gateway. Push delivery goes
// through a mobile provider the backend does not integrate yet, so the
// channel is satisfied by logging the would-be send.
type LogPushSender struct {
	logger *slog.Logger
}

// NewLogPushSender creates a push sender that only logs.
func NewLogPushSender(log *slog.Logger) *LogPushSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogPushSender{logger: log}
}

func (s *LogPushSender) Send(ctx context.Context, userID string, n notify.Notification) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "push notification",
		slog.String("notification_id", n.ID),
		slog.String("title", n.Title),
		slog.String("urgency", string(n.Urgency)),
		logger.UserID(userID),
	)
	return nil
}
