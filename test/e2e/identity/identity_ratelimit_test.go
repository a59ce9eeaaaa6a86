package identity_test

import (
	"testing"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/stretchr/testify/require"
)

func TestPerPhoneSendLimit(t *testing.T) {
	client := phoneauth.NewSDKClient(setupIdentityContainerWithDefaultRateLimits(t), nil)
	challenge := renderChallenge(t, client)

	_, err := client.SendCode(t.Context(), testE164, challenge)
	require.NoError(t, err)

	_, err = client.SendCode(t.Context(), testE164, challenge)
	require.ErrorIs(t, err, phoneauth.ErrRateLimited, "one send per phone per interval")
	require.Equal(t, "Too many attempts. Please try again later", phoneauth.UserMessage(err))

	_, err = client.SendCode(t.Context(), "+919876500000", challenge)
	require.NoError(t, err, "other phones are unaffected")
}

func TestStrictLimitOnSend(t *testing.T) {
	client := phoneauth.NewSDKClient(setupIdentityContainerWithDefaultRateLimits(t), nil)
	challenge := renderChallenge(t, client)

	phones := []string{"+919000000001", "+919000000002", "+919000000003", "+919000000004", "+919000000005"}
	for _, p := range phones {
		_, err := client.SendCode(t.Context(), p, challenge)
		require.NoError(t, err, p)
	}

	_, err := client.SendCode(t.Context(), "+919000000006", renderChallenge(t, client))
	require.ErrorIs(t, err, phoneauth.ErrRateLimited, "five sends per minute per address")
}
