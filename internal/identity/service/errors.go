package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
)

var (
	ErrInvalidContainer  = errors.New("container id is required")
	ErrChallengeRejected = errors.New("challenge token rejected")
	ErrInvalidPhone      = domain.ErrInvalidPhone
	ErrRateLimited       = errors.New("too many codes requested for this phone")
	ErrDelivery          = errors.New("code could not be delivered")
	ErrInvalidCode       = errors.New("invalid code")
	ErrExpired           = errors.New("verification expired or already used")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNoFields          = errors.New("at least one field is required")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidRecord     = errors.New("invalid record")
)

// RateLimitedError carries how long the caller should wait. It matches
// ErrRateLimited with errors.Is.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%v, retry in %s", ErrRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }
