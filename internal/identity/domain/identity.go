package domain

import "time"

// Identity is a verified phone number. The id is allocated on first sign in
// and reused for every later sign in with the same number.
type Identity struct {
	ID          string
	Phone       string
	Email       string
	CreatedAt   time.Time
	LastLoginAt time.Time
}

// Record is the application profile for an identity.
type Record struct {
	ID         string // same as the identity id
	Phone      string
	Name       string
	Email      string
	ProfileURL string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DefaultRecordName is the display name given to brand new profiles.
const DefaultRecordName = "User"

// NewDefaultRecord is the profile created on first sign in.
func NewDefaultRecord(id, phone string, now time.Time) Record {
	return Record{
		ID:        id,
		Phone:     phone,
		Name:      DefaultRecordName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
