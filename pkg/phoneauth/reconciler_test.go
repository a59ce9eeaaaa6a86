package phoneauth_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/stretchr/testify/require"
)

func TestReconcileCreatesDefaultRecord(t *testing.T) {
	records := newFakeRecords()
	r := &phoneauth.Reconciler{Store: records}
	id := phoneauth.Identity{ID: "abc123", Phone: "+919876543210"}

	rec, err := r.Reconcile(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, phoneauth.ProfileRecord{ID: "abc123", Phone: "+919876543210", Name: "User"}, rec)

	stored, ok := records.get("abc123")
	require.True(t, ok)
	require.Equal(t, rec, stored)
}

func TestReconcileNeverOverwrites(t *testing.T) {
	records := newFakeRecords()
	r := &phoneauth.Reconciler{Store: records}
	id := phoneauth.Identity{ID: "abc123", Phone: "+919876543210"}

	_, err := r.Reconcile(context.Background(), id)
	require.NoError(t, err)

	edited := phoneauth.ProfileRecord{ID: "abc123", Phone: "+919876543210", Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, records.PutRecord(context.Background(), edited, false))

	for range 3 {
		rec, err := r.Reconcile(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, edited, rec)
	}
	require.Equal(t, 1, records.creates)
}

func TestReconcileLosesCreateRace(t *testing.T) {
	records := newFakeRecords()
	winner := phoneauth.ProfileRecord{ID: "abc123", Phone: "+919876543210", Name: "Other tab"}
	records.raceWith = &winner

	rec, err := (&phoneauth.Reconciler{Store: records}).Reconcile(context.Background(),
		phoneauth.Identity{ID: "abc123", Phone: "+919876543210"})
	require.NoError(t, err)
	require.Equal(t, winner, rec)
}

func TestReconcileStoreFailures(t *testing.T) {
	id := phoneauth.Identity{ID: "abc123"}

	t.Run("get", func(t *testing.T) {
		records := newFakeRecords()
		records.getErr = errBoom
		_, err := (&phoneauth.Reconciler{Store: records}).Reconcile(context.Background(), id)
		var re *phoneauth.RecordStoreError
		require.ErrorAs(t, err, &re)
		require.Equal(t, "get", re.Op)
		require.ErrorIs(t, err, errBoom)
	})

	t.Run("create", func(t *testing.T) {
		records := newFakeRecords()
		records.putErr = errBoom
		_, err := (&phoneauth.Reconciler{Store: records}).Reconcile(context.Background(), id)
		var re *phoneauth.RecordStoreError
		require.ErrorAs(t, err, &re)
		require.Equal(t, "create", re.Op)
	})
}
