package domain

import "time"

// Verification is a pending phone verification. It is consumed by the first
// correct code and burned after MaxAttempts wrong ones.
type Verification struct {
	ID          string // ULID, handed to the client as the verification id
	Phone       string // E.164
	CodeHash    string // argon2id PHC string
	Attempts    int
	MaxAttempts int
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (v Verification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

func (v Verification) Exhausted() bool {
	return v.Attempts >= v.MaxAttempts
}
