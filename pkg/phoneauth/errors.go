package phoneauth

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrResendCooldown is returned by Resend while the timer is running.
	ErrResendCooldown = errors.New("phoneauth: resend not available yet")

	// ErrBusy is returned when another operation of the same flow is in
	// flight.
	ErrBusy = errors.New("phoneauth: another request is in progress")

	// ErrAbandoned is returned when the flow was closed while the operation
	// was waiting on the network. Its result was discarded.
	ErrAbandoned = errors.New("phoneauth: flow closed")

	// ErrNoPhone is returned by Resend before any code was requested.
	ErrNoPhone = errors.New("phoneauth: no code has been requested")

	ErrRecordNotFound = errors.New("phoneauth: record not found")
	ErrRecordExists   = errors.New("phoneauth: record already exists")
)

// ValidationError reports local input that never reached the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProviderKind classifies a provider failure.
type ProviderKind int

const (
	RateLimited ProviderKind = iota + 1
	InvalidPhone
	ChallengeRejected
	InvalidCode
	Expired
	Unavailable
)

func (k ProviderKind) String() string {
	switch k {
	case RateLimited:
		return "rate_limited"
	case InvalidPhone:
		return "invalid_phone"
	case ChallengeRejected:
		return "challenge_rejected"
	case InvalidCode:
		return "invalid_code"
	case Expired:
		return "expired"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ProviderError is a challenge, send or confirm failure reported by the
// identity provider. errors.Is matches another *ProviderError of the same
// Kind, so callers can write errors.Is(err, ErrInvalidCode).
type ProviderError struct {
	Kind ProviderKind
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return "provider: " + e.Kind.String()
	}
	return fmt.Sprintf("provider: %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrRateLimited       = &ProviderError{Kind: RateLimited}
	ErrInvalidPhone      = &ProviderError{Kind: InvalidPhone}
	ErrChallengeRejected = &ProviderError{Kind: ChallengeRejected}
	ErrInvalidCode       = &ProviderError{Kind: InvalidCode}
	ErrExpired           = &ProviderError{Kind: Expired}
	ErrUnavailable       = &ProviderError{Kind: Unavailable}
)

// ChallengeSetupError reports a challenge that could not be rendered.
type ChallengeSetupError struct {
	ContainerID string
	Err         error
}

func (e *ChallengeSetupError) Error() string {
	return fmt.Sprintf("challenge setup in %q: %v", e.ContainerID, e.Err)
}

func (e *ChallengeSetupError) Unwrap() error { return e.Err }

// RecordStoreError reports a record store failure during login. The login
// is not completed when one occurs.
type RecordStoreError struct {
	Op  string
	Err error
}

func (e *RecordStoreError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *RecordStoreError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer from the profile endpoint, kept verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// UserMessage turns any error from this package into a line fit to show the
// user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		ve *ValidationError
		pe *ProviderError
		ce *ChallengeSetupError
		re *RecordStoreError
		ae *APIError
	)
	switch {
	case errors.As(err, &ve):
		switch ve.Field {
		case "phone":
			return "Enter a valid 10-digit phone number"
		case "code":
			return "Enter the 6-digit OTP"
		case "pending":
			return "Request an OTP first"
		case "profile":
			return "Enter at least one field"
		default:
			return "Invalid " + ve.Field
		}
	case errors.As(err, &pe):
		switch pe.Kind {
		case RateLimited:
			return "Too many attempts. Please try again later"
		case InvalidPhone:
			return "This phone number cannot receive an OTP"
		case ChallengeRejected:
			return "Verification check failed. Please try again"
		case InvalidCode:
			return "Invalid OTP"
		case Expired:
			return "OTP expired. Please request a new one"
		default:
			return "Failed to send OTP"
		}
	case errors.As(err, &ce):
		return "Failed to send OTP"
	case errors.As(err, &re):
		return "Could not load your profile. Please try again"
	case errors.As(err, &ae):
		return fmt.Sprintf("Update failed (%d)", ae.StatusCode)
	case errors.Is(err, ErrResendCooldown):
		return "Please wait before requesting another OTP"
	case errors.Is(err, ErrBusy):
		return "Please wait"
	case errors.Is(err, ErrNoPhone):
		return "Request an OTP first"
	default:
		return "Something went wrong. Please try again"
	}
}
