package notify

import (
	"context"

	"github.com/dmitrijs2005/secretsanta/internal/logging"
)

// LogSender writes messages to the log instead of delivering them. It is
// used when no e-mail provider is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "log_sender")}
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
	s.logger.Info(ctx, "e-mail not delivered (no provider configured)",
		"to", m.To, "subject", m.Subject)
	s.logger.Debug(ctx, "e-mail body", "to", m.To, "text", m.Text)
	return nil
}
