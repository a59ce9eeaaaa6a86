package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Sub-repositories keep each table's
// queries together and make it hard to open a transaction inside another.
type Store interface {
	Challenges() Challenges
	Verifications() Verifications
	Identities() Identities
	Records() Records

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a Store scoped to one transaction.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Challenges interface {
	CreateChallenge(ctx context.Context, c domain.Challenge) error

	// GetChallengeByTokenHash returns the challenge regardless of expiry.
	GetChallengeByTokenHash(ctx context.Context, hash string) (domain.Challenge, error)

	// IncrementChallengeUses bumps uses by one.
	IncrementChallengeUses(ctx context.Context, id string) error

	DeleteChallenge(ctx context.Context, id string) error

	// DeleteExpiredChallenges removes challenges expired at now.
	DeleteExpiredChallenges(ctx context.Context, now time.Time) (int64, error)
}

type Verifications interface {
	CreateVerification(ctx context.Context, v domain.Verification) error
	GetVerification(ctx context.Context, id string) (domain.Verification, error)

	// IncrementVerificationAttempts bumps attempts and returns the new count.
	IncrementVerificationAttempts(ctx context.Context, id string) (int, error)

	DeleteVerification(ctx context.Context, id string) error

	// DeleteVerificationsForPhone removes every pending verification for
	// phone. A new send supersedes the old ones.
	DeleteVerificationsForPhone(ctx context.Context, phone string) (int64, error)

	DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error)
}

type Identities interface {
	GetIdentityByID(ctx context.Context, id string) (domain.Identity, error)
	GetIdentityByPhone(ctx context.Context, phone string) (domain.Identity, error)

	// CreateIdentity returns ErrAlreadyExists when the id or phone is taken.
	CreateIdentity(ctx context.Context, i domain.Identity) error

	TouchLogin(ctx context.Context, id string, at time.Time) error
	UpdateIdentityEmail(ctx context.Context, id, email string) error
}

type Records interface {
	GetRecord(ctx context.Context, id string) (domain.Record, error)

	// CreateRecord returns ErrAlreadyExists when a record with the id exists.
	// It never overwrites.
	CreateRecord(ctx context.Context, r domain.Record) error

	// PutRecord inserts or replaces the record, keeping created_at.
	PutRecord(ctx context.Context, r domain.Record) error
}
