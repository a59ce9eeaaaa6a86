package phoneauth_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/stretchr/testify/require"
)

func TestChallengeIssuerRendersOnce(t *testing.T) {
	r := &fakeRenderer{}
	issuer := phoneauth.NewChallengeIssuer(r)
	require.Nil(t, issuer.Current())

	first, err := issuer.Obtain(context.Background(), "recaptcha-container")
	require.NoError(t, err)
	require.Equal(t, phoneauth.ChallengeRendered, first.State)
	require.Equal(t, "recaptcha-container", first.ContainerID)

	second, err := issuer.Obtain(context.Background(), "recaptcha-container")
	require.NoError(t, err)
	require.Same(t, first, second)
	require.EqualValues(t, 1, r.calls.Load())
}

func TestChallengeIssuerResetRendersAgain(t *testing.T) {
	r := &fakeRenderer{}
	issuer := phoneauth.NewChallengeIssuer(r)

	first, err := issuer.Obtain(context.Background(), "c")
	require.NoError(t, err)
	issuer.Reset()
	require.Nil(t, issuer.Current())

	second, err := issuer.Obtain(context.Background(), "c")
	require.NoError(t, err)
	require.NotEqual(t, first.Value, second.Value)
	require.EqualValues(t, 2, r.calls.Load())
}

func TestChallengeIssuerSetupFailure(t *testing.T) {
	t.Run("missing container", func(t *testing.T) {
		r := &fakeRenderer{}
		_, err := phoneauth.NewChallengeIssuer(r).Obtain(context.Background(), "  ")
		var ce *phoneauth.ChallengeSetupError
		require.ErrorAs(t, err, &ce)
		require.Zero(t, r.calls.Load())
	})

	t.Run("renderer error", func(t *testing.T) {
		issuer := phoneauth.NewChallengeIssuer(&fakeRenderer{err: errBoom})
		_, err := issuer.Obtain(context.Background(), "c")
		var ce *phoneauth.ChallengeSetupError
		require.ErrorAs(t, err, &ce)
		require.ErrorIs(t, err, errBoom)
		require.Nil(t, issuer.Current(), "a failed render holds no token")
	})
}
