// Package email delivers reminder mail.
package email

import (
	"context"
	"time"
)

// SendRequest is one message ready for a provider.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's configured address
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	Tags    map[string]string // provider labels such as {"kind": "general"}
}

// SendResult is what the provider acknowledged.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender hands a message to a mail provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
