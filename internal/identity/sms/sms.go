// Package sms delivers verification codes. The log sender keeps codes in
// memory for local runs and tests; SMSLocal talks to a real gateway.
package sms

import (
	"context"
	"time"
)

// Message is one verification code bound for a phone.
type Message struct {
	VerificationID string
	Phone          string // E.164
	Code           string
	ExpiresAt      time.Time
}

// Sender delivers a code. Implementations must not log the code outside
// development sinks.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
