package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	b, err := GenerateToken(TokenSize256)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	require.Len(t, raw, TokenSize256)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	fp := FingerprintToken("challenge")
	require.Equal(t, fp, FingerprintToken("challenge"))
	require.NotEqual(t, fp, FingerprintToken("challengf"))
	require.Len(t, fp, 43)

	require.True(t, EqualFingerprint("challenge", fp))
	require.False(t, EqualFingerprint("other", fp))
}
