package email

import (
	"context"
	"log/slog"
)

// LogSender implements EmailSender for local development: it logs the
// email instead of sending it through a provider.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a development email sender that logs outbound
// mail at info level.
func NewLogSender(logger *slog.Logger) EmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "email send (dev mode, not delivered)",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)
	return nil
}
