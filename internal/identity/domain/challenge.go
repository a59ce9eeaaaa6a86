package domain

import "time"

// Challenge is an anti-automation token handed to a client widget before it
// may request codes. Only the fingerprint of the token is stored.
type Challenge struct {
	ID          string // ULID
	TokenHash   string // cryptox.FingerprintToken of the bearer token
	ContainerID string // widget container the token was rendered into
	Uses        int    // sends already made with this token
	MaxUses     int
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Usable reports whether another send may be made with the challenge.
func (c Challenge) Usable(now time.Time) bool {
	return now.Before(c.ExpiresAt) && c.Uses < c.MaxUses
}
