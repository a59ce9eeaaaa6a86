package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
	"github.com/aussiebroadwan/foodcar/internal/identity/service"
	"github.com/aussiebroadwan/foodcar/internal/identity/sms"
	"github.com/aussiebroadwan/foodcar/internal/identity/store"
	"github.com/aussiebroadwan/foodcar/internal/identity/store/drivers/sqlite"
	"github.com/aussiebroadwan/foodcar/pkg/cryptox"
	"github.com/aussiebroadwan/foodcar/pkg/jwtx"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const phone = "+919876543210"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingSender struct{}

func (failingSender) Send(context.Context, sms.Message) error { return errors.New("gateway down") }

type fixture struct {
	store      store.Store
	clock      *clock
	codes      *sms.DevCodes
	challenges *service.ChallengeService
	otp        *service.OTPService
	records    *service.RecordService
	verifier   jwtx.Verifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA(pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	clk := &clock{now: time.Now().UTC().Truncate(time.Millisecond)}
	codes := sms.NewDevCodes()

	challenges := &service.ChallengeService{Store: st, TTL: 10 * time.Minute, MaxUses: 2, Now: clk.Now}
	otp := &service.OTPService{
		Store:        st,
		Challenges:   challenges,
		Sender:       sms.NewLogSender(slogx.Discard(), codes),
		Hasher:       cryptox.NewCodeHasher("pepper"),
		Signer:       signer,
		Issuer:       "https://id.foodcar.test",
		TokenTTL:     time.Hour,
		CodeTTL:      5 * time.Minute,
		MaxAttempts:  3,
		Logger:       slogx.Discard(),
		Now:          clk.Now,
		GenerateCode: func() (string, error) { return "424242", nil },
	}

	return &fixture{
		store:      st,
		clock:      clk,
		codes:      codes,
		challenges: challenges,
		otp:        otp,
		records:    &service.RecordService{Store: st, Now: clk.Now},
		verifier:   jwtx.NewVerifierEdDSA(keys, "https://id.foodcar.test"),
	}
}

func (f *fixture) challenge(t *testing.T) string {
	t.Helper()
	tok, _, err := f.challenges.Issue(context.Background(), "recaptcha-container")
	require.NoError(t, err)
	return tok
}

func TestChallengeIssueRequiresContainer(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.challenges.Issue(context.Background(), "  ")
	require.ErrorIs(t, err, service.ErrInvalidContainer)
}

func TestChallengeReuseIsBounded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tok := f.challenge(t)

	_, err := f.otp.Send(ctx, phone, tok)
	require.NoError(t, err)
	_, err = f.otp.Send(ctx, phone, tok)
	require.NoError(t, err, "resend may reuse the token")
	_, err = f.otp.Send(ctx, phone, tok)
	require.ErrorIs(t, err, service.ErrChallengeRejected, "max uses reached")
}

func TestChallengeExpires(t *testing.T) {
	f := newFixture(t)
	tok := f.challenge(t)
	f.clock.Advance(10 * time.Minute)

	_, err := f.otp.Send(context.Background(), phone, tok)
	require.ErrorIs(t, err, service.ErrChallengeRejected)
}

func TestSendRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.otp.Send(ctx, "9876543210", f.challenge(t))
	require.ErrorIs(t, err, service.ErrInvalidPhone)

	_, err = f.otp.Send(ctx, phone, "made-up")
	require.ErrorIs(t, err, service.ErrChallengeRejected)
}

func TestSendIsRateLimitedPerPhone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.otp.PhoneLimiter = service.NewPhoneLimiter(30 * time.Second)

	_, err := f.otp.Send(ctx, phone, f.challenge(t))
	require.NoError(t, err)

	_, err = f.otp.Send(ctx, phone, f.challenge(t))
	require.ErrorIs(t, err, service.ErrRateLimited)
	var rl *service.RateLimitedError
	require.ErrorAs(t, err, &rl)
	require.Positive(t, rl.RetryAfter)

	_, err = f.otp.Send(ctx, "+919800000000", f.challenge(t))
	require.NoError(t, err, "other phones are unaffected")
}

func TestSendDeliversCode(t *testing.T) {
	f := newFixture(t)

	res, err := f.otp.Send(context.Background(), phone, f.challenge(t))
	require.NoError(t, err)
	require.Equal(t, f.clock.Now().Add(5*time.Minute), res.ExpiresAt)

	code, ok := f.codes.Get(res.VerificationID)
	require.True(t, ok)
	require.Equal(t, "424242", code)
}

func TestSendDeliveryFailureDropsVerification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.otp.Sender = failingSender{}

	_, err := f.otp.Send(ctx, phone, f.challenge(t))
	require.ErrorIs(t, err, service.ErrDelivery)

	n, err := f.store.Verifications().DeleteVerificationsForPhone(ctx, phone)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestConfirmIssuesTokenAndStableIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.otp.Send(ctx, phone, f.challenge(t))
	require.NoError(t, err)

	got, err := f.otp.Confirm(ctx, res.VerificationID, "424242")
	require.NoError(t, err)
	require.Equal(t, phone, got.Identity.Phone)
	require.Equal(t, time.Hour, got.ExpiresIn)

	claims, err := f.verifier.Verify(got.IDToken)
	require.NoError(t, err)
	require.Equal(t, got.Identity.ID, claims.Subject)
	require.Equal(t, phone, claims.Phone)

	_, err = f.otp.Confirm(ctx, res.VerificationID, "424242")
	require.ErrorIs(t, err, service.ErrExpired, "a verification is consumed once")

	f.clock.Advance(time.Minute)
	res, err = f.otp.Send(ctx, phone, f.challenge(t))
	require.NoError(t, err)
	again, err := f.otp.Confirm(ctx, res.VerificationID, "424242")
	require.NoError(t, err)
	require.Equal(t, got.Identity.ID, again.Identity.ID, "same phone, same identity")
	require.Equal(t, f.clock.Now(), again.Identity.LastLoginAt)
}

func TestConfirmWrongCodeThenBurned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.otp.Send(ctx, phone, f.challenge(t))
	require.NoError(t, err)

	_, err = f.otp.Confirm(ctx, res.VerificationID, "12345")
	require.ErrorIs(t, err, service.ErrInvalidCode, "malformed code")

	for range 3 {
		_, err = f.otp.Confirm(ctx, res.VerificationID, "000000")
		require.ErrorIs(t, err, service.ErrInvalidCode)
	}

	_, err = f.otp.Confirm(ctx, res.VerificationID, "424242")
	require.ErrorIs(t, err, service.ErrExpired, "burned after max attempts")
}

func TestConfirmExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.otp.Send(ctx, phone, f.challenge(t))
	require.NoError(t, err)
	f.clock.Advance(5 * time.Minute)

	_, err = f.otp.Confirm(ctx, res.VerificationID, "424242")
	require.ErrorIs(t, err, service.ErrExpired)
}

func TestNewSendSupersedesOld(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tok := f.challenge(t)

	first, err := f.otp.Send(ctx, phone, tok)
	require.NoError(t, err)
	second, err := f.otp.Send(ctx, phone, tok)
	require.NoError(t, err)

	_, err = f.otp.Confirm(ctx, first.VerificationID, "424242")
	require.ErrorIs(t, err, service.ErrExpired)
	_, err = f.otp.Confirm(ctx, second.VerificationID, "424242")
	require.NoError(t, err)
}

func signIn(t *testing.T, f *fixture) domain.Identity {
	t.Helper()
	ctx := context.Background()
	res, err := f.otp.Send(ctx, phone, f.challenge(t))
	require.NoError(t, err)
	got, err := f.otp.Confirm(ctx, res.VerificationID, "424242")
	require.NoError(t, err)
	return got.Identity
}

func TestRecordsCreateOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ident := signIn(t, f)

	_, err := f.records.Get(ctx, ident.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	created, err := f.records.Put(ctx, domain.NewDefaultRecord(ident.ID, ident.Phone, time.Time{}), true)
	require.NoError(t, err)
	require.Equal(t, "User", created.Name)

	edited := created
	edited.Name = "Asha"
	_, err = f.records.Put(ctx, edited, false)
	require.NoError(t, err)

	_, err = f.records.Put(ctx, domain.NewDefaultRecord(ident.ID, ident.Phone, time.Time{}), true)
	require.ErrorIs(t, err, service.ErrAlreadyExists)

	got, err := f.records.Get(ctx, ident.ID)
	require.NoError(t, err)
	require.Equal(t, "Asha", got.Name, "create-only never clobbers")
}

func TestRecordsPutValidates(t *testing.T) {
	f := newFixture(t)
	_, err := f.records.Put(context.Background(), domain.Record{ID: " "}, false)
	require.ErrorIs(t, err, service.ErrInvalidRecord)

	_, err = f.records.Put(context.Background(), domain.Record{ID: "x", Email: "nope"}, false)
	require.ErrorIs(t, err, service.ErrInvalidEmail)

	_, err = f.records.Put(context.Background(), domain.Record{ID: "x", Name: strings.Repeat("a", 81)}, false)
	require.ErrorIs(t, err, service.ErrInvalidRecord)
	require.Contains(t, err.Error(), "name failed max")
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ident := signIn(t, f)

	_, err := f.records.UpdateUser(ctx, ident.ID, service.UpdateUserInput{Name: "Asha"})
	require.ErrorIs(t, err, service.ErrNotFound, "no record yet")

	_, err = f.records.Put(ctx, domain.NewDefaultRecord(ident.ID, ident.Phone, time.Time{}), true)
	require.NoError(t, err)

	_, err = f.records.UpdateUser(ctx, ident.ID, service.UpdateUserInput{})
	require.ErrorIs(t, err, service.ErrNoFields)
	_, err = f.records.UpdateUser(ctx, ident.ID, service.UpdateUserInput{Email: "bad"})
	require.ErrorIs(t, err, service.ErrInvalidEmail)
	_, err = f.records.UpdateUser(ctx, ident.ID, service.UpdateUserInput{Phone: "123"})
	require.ErrorIs(t, err, service.ErrInvalidPhone)

	got, err := f.records.UpdateUser(ctx, ident.ID, service.UpdateUserInput{Email: "asha@example.com"})
	require.NoError(t, err)
	require.Equal(t, "User", got.Name, "untouched fields stay")
	require.Equal(t, "asha@example.com", got.Email)

	saved, err := (&service.IdentityService{Store: f.store}).Get(ctx, ident.ID)
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", saved.Email)
}

func TestHousekeepingRemovesExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.otp.Send(ctx, phone, f.challenge(t))
	require.NoError(t, err)

	hk := service.NewHousekeepingService(f.store, slogx.Discard(), time.Hour)
	hk.Now = f.clock.Now
	hk.DevCodes = f.codes

	hk.Cleanup(ctx)
	_, err = f.store.Verifications().GetVerification(ctx, res.VerificationID)
	require.NoError(t, err, "live rows stay")

	f.clock.Advance(11 * time.Minute)
	hk.Cleanup(ctx)
	_, err = f.store.Verifications().GetVerification(ctx, res.VerificationID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingStartStop(t *testing.T) {
	f := newFixture(t)
	hk := service.NewHousekeepingService(f.store, slogx.Discard(), 0)
	require.Equal(t, 15*time.Minute, hk.Interval)
	hk.Start()
	hk.Stop()
}
