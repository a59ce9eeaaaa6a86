package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
)

type identitiesRepo struct {
	q querier
}

const identityColumns = `id, phone, email, created_at, last_login_at`

func (r *identitiesRepo) scan(ctx context.Context, where string, arg any) (domain.Identity, error) {
	var (
		i                  domain.Identity
		createdAt, loginAt int64
	)
	err := r.q.QueryRowContext(ctx, `SELECT `+identityColumns+` FROM identities WHERE `+where, arg).
		Scan(&i.ID, &i.Phone, &i.Email, &createdAt, &loginAt)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	i.CreatedAt = fromMillis(createdAt)
	i.LastLoginAt = fromMillis(loginAt)
	return i, nil
}

func (r *identitiesRepo) GetIdentityByID(ctx context.Context, id string) (domain.Identity, error) {
	return r.scan(ctx, `id = ?`, id)
}

func (r *identitiesRepo) GetIdentityByPhone(ctx context.Context, phone string) (domain.Identity, error) {
	return r.scan(ctx, `phone = ?`, phone)
}

func (r *identitiesRepo) CreateIdentity(ctx context.Context, i domain.Identity) error {
	return insertedOrExists(r.q.ExecContext(ctx, `
		INSERT INTO identities (`+identityColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		i.ID, i.Phone, i.Email, toMillis(i.CreatedAt), toMillis(i.LastLoginAt),
	))
}

func (r *identitiesRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return affectedOrNotFound(r.q.ExecContext(ctx,
		`UPDATE identities SET last_login_at = ? WHERE id = ?`, toMillis(at), id))
}

func (r *identitiesRepo) UpdateIdentityEmail(ctx context.Context, id, email string) error {
	return affectedOrNotFound(r.q.ExecContext(ctx,
		`UPDATE identities SET email = ? WHERE id = ?`, email, id))
}
