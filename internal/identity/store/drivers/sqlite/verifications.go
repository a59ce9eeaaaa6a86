package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
)

type verificationsRepo struct {
	q querier
}

func (r *verificationsRepo) CreateVerification(ctx context.Context, v domain.Verification) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO verifications (id, phone, code_hash, attempts, max_attempts, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Phone, v.CodeHash, v.Attempts, v.MaxAttempts, toMillis(v.ExpiresAt), toMillis(v.CreatedAt),
	)
	return err
}

func (r *verificationsRepo) GetVerification(ctx context.Context, id string) (domain.Verification, error) {
	var (
		v                    domain.Verification
		expiresAt, createdAt int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, phone, code_hash, attempts, max_attempts, expires_at, created_at
		FROM verifications WHERE id = ?`, id,
	).Scan(&v.ID, &v.Phone, &v.CodeHash, &v.Attempts, &v.MaxAttempts, &expiresAt, &createdAt)
	if err != nil {
		return domain.Verification{}, mapNotFound(err)
	}
	v.ExpiresAt = fromMillis(expiresAt)
	v.CreatedAt = fromMillis(createdAt)
	return v, nil
}

func (r *verificationsRepo) IncrementVerificationAttempts(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.q.QueryRowContext(ctx,
		`UPDATE verifications SET attempts = attempts + 1 WHERE id = ? RETURNING attempts`, id,
	).Scan(&attempts)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return attempts, nil
}

func (r *verificationsRepo) DeleteVerification(ctx context.Context, id string) error {
	return affectedOrNotFound(r.q.ExecContext(ctx, `DELETE FROM verifications WHERE id = ?`, id))
}

func (r *verificationsRepo) DeleteVerificationsForPhone(ctx context.Context, phone string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM verifications WHERE phone = ?`, phone)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *verificationsRepo) DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM verifications WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
