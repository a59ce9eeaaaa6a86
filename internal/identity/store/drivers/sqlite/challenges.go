package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
)

type challengesRepo struct {
	q querier
}

func (r *challengesRepo) CreateChallenge(ctx context.Context, c domain.Challenge) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO challenges (id, token_hash, container_id, uses, max_uses, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TokenHash, c.ContainerID, c.Uses, c.MaxUses, toMillis(c.ExpiresAt), toMillis(c.CreatedAt),
	)
	return err
}

func (r *challengesRepo) GetChallengeByTokenHash(ctx context.Context, hash string) (domain.Challenge, error) {
	var (
		c                    domain.Challenge
		expiresAt, createdAt int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, token_hash, container_id, uses, max_uses, expires_at, created_at
		FROM challenges WHERE token_hash = ?`, hash,
	).Scan(&c.ID, &c.TokenHash, &c.ContainerID, &c.Uses, &c.MaxUses, &expiresAt, &createdAt)
	if err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}
	c.ExpiresAt = fromMillis(expiresAt)
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

func (r *challengesRepo) IncrementChallengeUses(ctx context.Context, id string) error {
	return affectedOrNotFound(r.q.ExecContext(ctx,
		`UPDATE challenges SET uses = uses + 1 WHERE id = ?`, id))
}

func (r *challengesRepo) DeleteChallenge(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
	return err
}

func (r *challengesRepo) DeleteExpiredChallenges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM challenges WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
