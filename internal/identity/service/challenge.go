package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
	"github.com/aussiebroadwan/foodcar/internal/identity/metrics"
	"github.com/aussiebroadwan/foodcar/internal/identity/store"
	"github.com/aussiebroadwan/foodcar/pkg/cryptox"
	"github.com/aussiebroadwan/foodcar/pkg/idx"
)

const (
	DefaultChallengeTTL     = 10 * time.Minute
	DefaultChallengeMaxUses = 5
)

// ChallengeService renders anti-automation tokens and checks them on send.
// A token may be reused for a few sends so resends do not need a new widget.
type ChallengeService struct {
	Store   store.Store
	TTL     time.Duration
	MaxUses int
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (s *ChallengeService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Issue renders a token for containerID. Only its fingerprint is stored.
func (s *ChallengeService) Issue(ctx context.Context, containerID string) (string, time.Time, error) {
	containerID = strings.TrimSpace(containerID)
	if containerID == "" {
		return "", time.Time{}, ErrInvalidContainer
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate challenge token: %w", err)
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	maxUses := s.MaxUses
	if maxUses <= 0 {
		maxUses = DefaultChallengeMaxUses
	}

	now := s.now()
	c := domain.Challenge{
		ID:          idx.NewAt(now).String(),
		TokenHash:   cryptox.FingerprintToken(token),
		ContainerID: containerID,
		MaxUses:     maxUses,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}
	if err := s.Store.Challenges().CreateChallenge(ctx, c); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store challenge: %w", err)
	}

	s.Metrics.ChallengeIssued()
	return token, c.ExpiresAt, nil
}

// Consume spends one use of token inside tx. Unknown, expired and used up
// tokens are all ErrChallengeRejected.
func (s *ChallengeService) Consume(ctx context.Context, tx store.Tx, token string) error {
	if token == "" {
		return ErrChallengeRejected
	}

	c, err := tx.Challenges().GetChallengeByTokenHash(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return ErrChallengeRejected
	}
	if err != nil {
		return fmt.Errorf("failed to load challenge: %w", err)
	}

	if !c.Usable(s.now()) {
		return ErrChallengeRejected
	}

	if err := tx.Challenges().IncrementChallengeUses(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to spend challenge: %w", err)
	}
	return nil
}
