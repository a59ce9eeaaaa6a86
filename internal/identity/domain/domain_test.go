package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	got, err := domain.NormalizePhone("  +919876543210 ")
	require.NoError(t, err)
	require.Equal(t, "+919876543210", got)

	for _, bad := range []string{"", "9876543210", "+0123456789", "+91 98765 43210", "+91abc"} {
		_, err := domain.NormalizePhone(bad)
		require.ErrorIs(t, err, domain.ErrInvalidPhone, bad)
	}
}

func TestMaskPhone(t *testing.T) {
	require.Equal(t, "+91********10", domain.MaskPhone("+919876543210"))
	require.Equal(t, "***", domain.MaskPhone("+91"))
}

func TestChallengeUsable(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := domain.Challenge{MaxUses: 2, ExpiresAt: now.Add(time.Minute)}

	require.True(t, c.Usable(now))
	c.Uses = 2
	require.False(t, c.Usable(now))
	c.Uses = 0
	require.False(t, c.Usable(now.Add(time.Minute)))
}

func TestVerificationState(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := domain.Verification{MaxAttempts: 5, ExpiresAt: now.Add(time.Minute)}

	require.False(t, v.Expired(now))
	require.True(t, v.Expired(now.Add(time.Minute)))
	require.False(t, v.Exhausted())
	v.Attempts = 5
	require.True(t, v.Exhausted())
}

func TestNewDefaultRecord(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := domain.NewDefaultRecord("abc123", "+919876543210", now)
	require.Equal(t, domain.Record{
		ID: "abc123", Phone: "+919876543210", Name: "User", CreatedAt: now, UpdatedAt: now,
	}, r)
}
