package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// LogSender logs emails instead of delivering them. Used when no provider key is configured.
type LogSender struct {
	seq atomic.Int64
}

// NewLogSender creates a new LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the email but does not deliver it.
// PRE: req is a valid SendRequest
// POST: Returns a synthetic message ID
func (s *LogSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	n := s.seq.Add(1)
	slog.Info("email_logged", "to", req.To, "subject", req.Subject, "seq", n)
	return SendResult{
		MessageID: fmt.Sprintf("log-%d", n),
		SentAt:    time.Now(),
	}, nil
}
