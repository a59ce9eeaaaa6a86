package phoneauth

import (
	"context"
	"errors"
)

// Reconciler makes sure every identity has a profile record without ever
// overwriting one that exists.
type Reconciler struct {
	Store RecordStore
}

// Reconcile returns the stored record for id, creating the default record
// first when there is none. Safe to call any number of times.
func (r *Reconciler) Reconcile(ctx context.Context, id Identity) (ProfileRecord, error) {
	rec, err := r.Store.GetRecord(ctx, id.ID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return ProfileRecord{}, &RecordStoreError{Op: "get", Err: err}
	}

	rec = DefaultRecord(id)
	err = r.Store.PutRecord(ctx, rec, true)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, ErrRecordExists):
		// Someone else created it between the read and the write.
		existing, err := r.Store.GetRecord(ctx, id.ID)
		if err != nil {
			return ProfileRecord{}, &RecordStoreError{Op: "get", Err: err}
		}
		return existing, nil
	default:
		return ProfileRecord{}, &RecordStoreError{Op: "create", Err: err}
	}
}
