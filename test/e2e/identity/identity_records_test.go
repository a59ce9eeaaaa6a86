package identity_test

import (
	"testing"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/stretchr/testify/require"
)

func TestReconcileNeverOverwrites(t *testing.T) {
	client := phoneauth.NewSDKClient(setupIdentityContainer(t), nil)
	id := signIn(t, client, testPhone)
	reconciler := &phoneauth.Reconciler{Store: client}

	rec, err := reconciler.Reconcile(t.Context(), id)
	require.NoError(t, err)
	require.Equal(t, phoneauth.DefaultRecord(id), rec)

	updated, err := client.UpdateUser(t.Context(), id.Token, phoneauth.ProfileUpdate{Name: "Asha", Email: "asha@example.com"})
	require.NoError(t, err)
	require.Equal(t, "Asha", updated.Name)

	again := signIn(t, client, testPhone)
	rec, err = reconciler.Reconcile(t.Context(), again)
	require.NoError(t, err)
	require.Equal(t, "Asha", rec.Name)
	require.Equal(t, "asha@example.com", rec.Email)
}

func TestUpdateUserErrors(t *testing.T) {
	client := phoneauth.NewSDKClient(setupIdentityContainer(t), nil)
	id := signIn(t, client, testPhone)

	_, err := client.UpdateUser(t.Context(), id.Token, phoneauth.ProfileUpdate{Name: "Asha"})
	var apiErr *phoneauth.APIError
	require.ErrorAs(t, err, &apiErr, "no record yet")
	require.Equal(t, 404, apiErr.StatusCode)

	require.NoError(t, client.PutRecord(t.Context(), phoneauth.DefaultRecord(id), true))

	_, err = client.UpdateUser(t.Context(), id.Token, phoneauth.ProfileUpdate{Email: "not-an-email"})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 400, apiErr.StatusCode)

	_, err = client.UpdateUser(t.Context(), "garbage", phoneauth.ProfileUpdate{Name: "Asha"})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 401, apiErr.StatusCode)
}
