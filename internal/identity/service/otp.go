package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
	"github.com/aussiebroadwan/foodcar/internal/identity/metrics"
	"github.com/aussiebroadwan/foodcar/internal/identity/sms"
	"github.com/aussiebroadwan/foodcar/internal/identity/store"
	"github.com/aussiebroadwan/foodcar/pkg/cryptox"
	"github.com/aussiebroadwan/foodcar/pkg/httpx"
	"github.com/aussiebroadwan/foodcar/pkg/idx"
	"github.com/aussiebroadwan/foodcar/pkg/jwtx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	DefaultCodeTTL      = 5 * time.Minute
	DefaultMaxAttempts  = 5
	DefaultSendInterval = 30 * time.Second
)

var codeFormat = regexp.MustCompile(`^\d{6}$`)

// SendResult identifies the pending verification created by a send.
type SendResult struct {
	VerificationID string
	ExpiresAt      time.Time
}

// ConfirmResult is a verified identity and the token proving it.
type ConfirmResult struct {
	IDToken   string
	ExpiresIn time.Duration
	Identity  domain.Identity
}

// OTPService sends verification codes and exchanges them for identity
// tokens.
type OTPService struct {
	Store       store.Store
	Challenges  *ChallengeService
	Sender      sms.Sender
	Hasher      *cryptox.CodeHasher
	Signer      jwtx.Signer
	Issuer      string
	TokenTTL    time.Duration
	CodeTTL     time.Duration
	MaxAttempts int

	// PhoneLimiter throttles sends per phone number. Nil disables it.
	PhoneLimiter *httpx.KeyedLimiter

	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time

	// GenerateCode is swapped in tests. Defaults to a random HOTP code.
	GenerateCode func() (string, error)
}

// NewPhoneLimiter allows one send per interval for each phone.
func NewPhoneLimiter(interval time.Duration) *httpx.KeyedLimiter {
	if interval <= 0 {
		interval = DefaultSendInterval
	}
	return httpx.NewKeyedLimiter(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: interval, Burst: 1}, nil)
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OTPService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// randomHOTP derives a six digit code from a throwaway secret and counter.
func randomHOTP() (string, error) {
	var buf [28]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf[:20])
	counter := binary.BigEndian.Uint64(buf[20:])

	return hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// Send creates a verification for phone and delivers its code. Any earlier
// verification for the phone stops working.
func (s *OTPService) Send(ctx context.Context, phone, challengeToken string) (SendResult, error) {
	phone, err := domain.NormalizePhone(phone)
	if err != nil {
		return SendResult{}, ErrInvalidPhone
	}

	if s.PhoneLimiter != nil {
		if ok, wait := s.PhoneLimiter.Allow(phone); !ok {
			s.Metrics.OTPSent(metrics.ResultRateLimited)
			return SendResult{}, &RateLimitedError{RetryAfter: wait}
		}
	}

	gen := s.GenerateCode
	if gen == nil {
		gen = randomHOTP
	}
	code, err := gen()
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to generate code: %w", err)
	}
	hash, err := s.Hasher.Hash(code)
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to hash code: %w", err)
	}

	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	now := s.now()
	v := domain.Verification{
		ID:          idx.NewAt(now).String(),
		Phone:       phone,
		CodeHash:    hash,
		MaxAttempts: maxAttempts,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.Challenges.Consume(ctx, tx, challengeToken); err != nil {
			return err
		}
		if _, err := tx.Verifications().DeleteVerificationsForPhone(ctx, phone); err != nil {
			return fmt.Errorf("failed to supersede verifications: %w", err)
		}
		if err := tx.Verifications().CreateVerification(ctx, v); err != nil {
			return fmt.Errorf("failed to store verification: %w", err)
		}
		return nil
	})
	if errors.Is(err, ErrChallengeRejected) {
		s.Metrics.OTPSent(metrics.ResultChallengeRejected)
		return SendResult{}, err
	}
	if err != nil {
		s.Metrics.OTPSent(metrics.ResultError)
		return SendResult{}, err
	}

	msg := sms.Message{VerificationID: v.ID, Phone: phone, Code: code, ExpiresAt: v.ExpiresAt}
	if err := s.Sender.Send(ctx, msg); err != nil {
		s.logger().ErrorContext(ctx, "code delivery failed",
			"verification_id", v.ID,
			"phone", domain.MaskPhone(phone),
			"error", err,
		)
		if delErr := s.Store.Verifications().DeleteVerification(ctx, v.ID); delErr != nil && !errors.Is(delErr, store.ErrNotFound) {
			s.logger().ErrorContext(ctx, "failed to drop undelivered verification", "error", delErr)
		}
		s.Metrics.OTPSent(metrics.ResultError)
		return SendResult{}, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	s.Metrics.OTPSent(metrics.ResultOK)
	return SendResult{VerificationID: v.ID, ExpiresAt: v.ExpiresAt}, nil
}

// Confirm checks code against the verification. A correct code consumes the
// verification and signs the identity in, allocating an identity on first use
// of the phone. Wrong codes count towards MaxAttempts, after which the
// verification is burned.
func (s *OTPService) Confirm(ctx context.Context, verificationID, code string) (ConfirmResult, error) {
	if !codeFormat.MatchString(code) {
		s.Metrics.OTPConfirmed(metrics.ResultInvalidCode)
		return ConfirmResult{}, ErrInvalidCode
	}

	now := s.now()
	v, err := s.Store.Verifications().GetVerification(ctx, verificationID)
	if errors.Is(err, store.ErrNotFound) {
		s.Metrics.OTPConfirmed(metrics.ResultExpired)
		return ConfirmResult{}, ErrExpired
	}
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("failed to load verification: %w", err)
	}

	if v.Expired(now) || v.Exhausted() {
		_ = s.Store.Verifications().DeleteVerification(ctx, v.ID)
		s.Metrics.OTPConfirmed(metrics.ResultExpired)
		return ConfirmResult{}, ErrExpired
	}

	if err := s.Hasher.Verify(code, v.CodeHash); err != nil {
		if !errors.Is(err, cryptox.ErrCodeMismatch) {
			return ConfirmResult{}, fmt.Errorf("failed to verify code: %w", err)
		}
		if err := s.recordFailure(ctx, v); err != nil {
			return ConfirmResult{}, err
		}
		s.Metrics.OTPConfirmed(metrics.ResultInvalidCode)
		return ConfirmResult{}, ErrInvalidCode
	}

	var ident domain.Identity
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Losing a race with another correct confirm shows up here.
		if err := tx.Verifications().DeleteVerification(ctx, v.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrExpired
			}
			return fmt.Errorf("failed to consume verification: %w", err)
		}

		existing, err := tx.Identities().GetIdentityByPhone(ctx, v.Phone)
		switch {
		case err == nil:
			if err := tx.Identities().TouchLogin(ctx, existing.ID, now); err != nil {
				return fmt.Errorf("failed to record login: %w", err)
			}
			existing.LastLoginAt = now
			ident = existing
			return nil
		case errors.Is(err, store.ErrNotFound):
			ident = domain.Identity{
				ID:          idx.NewAt(now).String(),
				Phone:       v.Phone,
				CreatedAt:   now,
				LastLoginAt: now,
			}
			if err := tx.Identities().CreateIdentity(ctx, ident); err != nil {
				return fmt.Errorf("failed to create identity: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("failed to load identity: %w", err)
		}
	})
	if errors.Is(err, ErrExpired) {
		s.Metrics.OTPConfirmed(metrics.ResultExpired)
		return ConfirmResult{}, err
	}
	if err != nil {
		s.Metrics.OTPConfirmed(metrics.ResultError)
		return ConfirmResult{}, err
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultIdentityTokenTTL
	}
	token, err := s.Signer.Sign(jwtx.NewIdentityClaims(ident.ID, ident.Phone, s.Issuer, ttl, now))
	if err != nil {
		s.Metrics.OTPConfirmed(metrics.ResultError)
		return ConfirmResult{}, fmt.Errorf("failed to sign identity token: %w", err)
	}

	s.Metrics.OTPConfirmed(metrics.ResultOK)
	s.logger().InfoContext(ctx, "phone verified",
		"identity_id", ident.ID,
		"phone", domain.MaskPhone(ident.Phone),
	)
	return ConfirmResult{IDToken: token, ExpiresIn: ttl, Identity: ident}, nil
}

func (s *OTPService) recordFailure(ctx context.Context, v domain.Verification) error {
	attempts, err := s.Store.Verifications().IncrementVerificationAttempts(ctx, v.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to count attempt: %w", err)
	}
	if attempts >= v.MaxAttempts {
		if err := s.Store.Verifications().DeleteVerification(ctx, v.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to burn verification: %w", err)
		}
	}
	return nil
}
