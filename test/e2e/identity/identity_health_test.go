package identity_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/foodcar/pkg/jwtx"
	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/stretchr/testify/require"
)

func TestLivezEndpoint(t *testing.T) {
	client := phoneauth.NewSDKClient(setupIdentityContainer(t), nil)

	health, err := client.Livez(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
}

func TestOpsEndpoints(t *testing.T) {
	baseURL := setupIdentityContainer(t)

	for _, path := range []string{"/readyz", "/metrics", "/swagger/doc.json"} {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, baseURL+path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		require.NotEmpty(t, body, path)
	}
}

func TestJWKSVerifiesIssuedTokens(t *testing.T) {
	client := phoneauth.NewSDKClient(setupIdentityContainer(t), nil)
	id := signIn(t, client, testPhone)

	jwks, err := client.Keys(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, jwks.Keys, "JWKS should contain at least one key")

	keys, err := jwtx.KeySetFromJWKS(jwks)
	require.NoError(t, err)
	claims, err := jwtx.NewVerifierEdDSA(keys, "foodcar-identity-e2e").Verify(id.Token)
	require.NoError(t, err)
	require.Equal(t, id.ID, claims.Subject)
}
