package sqlite

import (
	"context"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
)

type recordsRepo struct {
	q querier
}

func (r *recordsRepo) GetRecord(ctx context.Context, id string) (domain.Record, error) {
	var (
		rec                  domain.Record
		createdAt, updatedAt int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, phone, name, email, profile_url, created_at, updated_at
		FROM records WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Phone, &rec.Name, &rec.Email, &rec.ProfileURL, &createdAt, &updatedAt)
	if err != nil {
		return domain.Record{}, mapNotFound(err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

func (r *recordsRepo) CreateRecord(ctx context.Context, rec domain.Record) error {
	return insertedOrExists(r.q.ExecContext(ctx, `
		INSERT INTO records (id, phone, name, email, profile_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Phone, rec.Name, rec.Email, rec.ProfileURL, toMillis(rec.CreatedAt), toMillis(rec.UpdatedAt),
	))
}

func (r *recordsRepo) PutRecord(ctx context.Context, rec domain.Record) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO records (id, phone, name, email, profile_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			phone = excluded.phone,
			name = excluded.name,
			email = excluded.email,
			profile_url = excluded.profile_url,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Phone, rec.Name, rec.Email, rec.ProfileURL, toMillis(rec.CreatedAt), toMillis(rec.UpdatedAt),
	)
	return err
}
