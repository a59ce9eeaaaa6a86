package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
	"github.com/aussiebroadwan/foodcar/internal/identity/store"
)

type IdentityService struct {
	Store store.Store
}

// Get returns the identity behind a verified token subject.
func (s *IdentityService) Get(ctx context.Context, id string) (domain.Identity, error) {
	ident, err := s.Store.Identities().GetIdentityByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Identity{}, ErrNotFound
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to load identity: %w", err)
	}
	return ident, nil
}
