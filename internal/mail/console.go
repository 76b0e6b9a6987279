package mail

import (
	"context"
	"log/slog"
	"sync"
)

// ConsoleMailer logs messages instead of sending them. It is used when no
// SendGrid key is configured and in tests.
type ConsoleMailer struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func NewConsoleMailer(logger *slog.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger}
}

func (m *ConsoleMailer) Send(ctx context.Context, msg *Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.InfoContext(ctx, "Email (console)",
			"to", msg.To,
			"subject", msg.Subject,
			"body", msg.Text)
	}
	return nil
}

// Sent returns a copy of every message sent so far
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
