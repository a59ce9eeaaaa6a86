package phoneauth

import (
	"context"
	"time"
)

// Identity is the authenticated principal. ID is stable for a phone number
// across sign ins; Token is the bearer proof presented to other services.
type Identity struct {
	ID        string
	Phone     string
	Email     string
	Name      string
	AvatarURL string
	Token     string
}

// ProfileRecord is the application's own document about an identity.
type ProfileRecord struct {
	ID        string
	Phone     string
	Name      string
	Email     string
	AvatarURL string
}

// DefaultName is given to records created on first sign in.
const DefaultName = "User"

// DefaultRecord is the record created for an identity seen for the first time.
func DefaultRecord(id Identity) ProfileRecord {
	return ProfileRecord{ID: id.ID, Phone: id.Phone, Name: DefaultName}
}

// Step is where a Flow is in the login state machine.
type Step int

const (
	StepPhoneEntry Step = iota
	StepOTPEntry
	StepAuthenticated
)

func (s Step) String() string {
	switch s {
	case StepPhoneEntry:
		return "phone_entry"
	case StepOTPEntry:
		return "otp_entry"
	case StepAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// IdentityProvider sends codes and owns the provider side session.
type IdentityProvider interface {
	// SendCode asks for a code to be sent to phone (E.164). A successful send
	// invalidates any earlier PendingVerification for the phone.
	SendCode(ctx context.Context, phone string, challenge *ChallengeToken) (PendingVerification, error)

	// Commit publishes a confirmed identity, already enriched with its
	// profile, as the signed in one. Auth state subscribers see nothing of a
	// confirmation until it is committed.
	Commit(id Identity)

	// SignOut drops the provider side session, committed or not. Subscribers
	// see a nil identity if one had been committed.
	SignOut(ctx context.Context) error
}

// PendingVerification links a sent code to its confirmation. Confirm
// succeeds at most once.
type PendingVerification interface {
	Confirm(ctx context.Context, code string) (Identity, error)
}

// AuthStateSource pushes the provider's current identity. The callback runs
// at least once after subscribing, with nil when nobody is signed in.
type AuthStateSource interface {
	SubscribeAuthState(fn func(*Identity)) (unsubscribe func())
}

// ChallengeRenderer renders an anti-automation challenge into a container and
// returns the resulting token.
type ChallengeRenderer interface {
	RenderChallenge(ctx context.Context, containerID string) (token string, expiresAt time.Time, err error)
}

// RecordStore persists profile records keyed by identity id.
type RecordStore interface {
	// GetRecord returns ErrRecordNotFound when no record exists.
	GetRecord(ctx context.Context, id string) (ProfileRecord, error)

	// PutRecord writes rec. With createOnly it returns ErrRecordExists
	// instead of overwriting.
	PutRecord(ctx context.Context, rec ProfileRecord, createOnly bool) error
}
