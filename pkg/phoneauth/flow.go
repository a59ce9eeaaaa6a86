package phoneauth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultContainerID is the challenge container used when none is set.
const DefaultContainerID = "recaptcha-container"

// FlowConfig wires a Flow. Provider, Renderer, Records and Session are
// required.
type FlowConfig struct {
	Provider IdentityProvider
	Renderer ChallengeRenderer
	Records  RecordStore
	Session  *SessionStore

	ContainerID string
	Cooldown    time.Duration
	NewTicker   func(time.Duration) Ticker
	Logger      *slog.Logger
}

// Flow is one login session: phone entry, code entry, authenticated. Only
// one operation runs at a time; a second concurrent call gets ErrBusy. After
// Close every in-flight operation returns ErrAbandoned without touching
// state.
type Flow struct {
	provider    IdentityProvider
	issuer      *ChallengeIssuer
	reconciler  *Reconciler
	session     *SessionStore
	timer       *ResendTimer
	containerID string
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	step    Step
	phone   string
	pending PendingVerification
	busy    bool
	gen     uint64
	closed  bool
}

func NewFlow(cfg FlowConfig) *Flow {
	if cfg.ContainerID == "" {
		cfg.ContainerID = DefaultContainerID
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Flow{
		provider:    cfg.Provider,
		issuer:      NewChallengeIssuer(cfg.Renderer),
		reconciler:  &Reconciler{Store: cfg.Records},
		session:     cfg.Session,
		timer:       NewResendTimer(cfg.Cooldown, cfg.NewTicker),
		containerID: cfg.ContainerID,
		logger:      cfg.Logger,
		ctx:         ctx,
		cancel:      cancel,
		step:        StepPhoneEntry,
	}
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Pending returns the live verification, or nil.
func (f *Flow) Pending() PendingVerification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Timer is the resend cooldown. Pages read it to enable the resend action.
func (f *Flow) Timer() *ResendTimer { return f.timer }

// Issuer exposes the challenge held by this login session.
func (f *Flow) Issuer() *ChallengeIssuer { return f.issuer }

// begin claims the flow for one operation. The returned context is cancelled
// when ctx is or when the flow is closed.
func (f *Flow) begin(ctx context.Context) (context.Context, uint64, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, 0, nil, ErrAbandoned
	}
	if f.busy {
		return nil, 0, nil, ErrBusy
	}
	f.busy = true

	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(f.ctx, cancel)
	done := func() {
		stop()
		cancel()
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}
	return opCtx, f.gen, done, nil
}

// current reports whether gen is still the live generation. Callers hold mu.
func (f *Flow) current(gen uint64) bool {
	return !f.closed && f.gen == gen
}

// RequestCode validates phone, obtains the session's challenge and asks the
// provider for a code. On success the returned verification becomes the live
// one, the resend timer restarts and the step moves to code entry. On failure
// the step is unchanged and any earlier verification is dropped.
func (f *Flow) RequestCode(ctx context.Context, phone string) (PendingVerification, error) {
	e164, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	opCtx, gen, done, err := f.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	token, err := f.issuer.Obtain(opCtx, f.containerID)
	if err != nil {
		return nil, f.failSend(gen, err)
	}

	pending, err := f.provider.SendCode(opCtx, e164, token)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Kind == ChallengeRejected {
			f.issuer.Reset()
		}
		return nil, f.failSend(gen, err)
	}

	f.mu.Lock()
	if !f.current(gen) {
		f.mu.Unlock()
		return nil, ErrAbandoned
	}
	f.pending = pending
	f.phone = phone
	f.step = StepOTPEntry
	f.mu.Unlock()

	f.timer.Start()

	// Close may have run between the unlock and Start.
	f.mu.Lock()
	abandoned := !f.current(gen)
	f.mu.Unlock()
	if abandoned {
		f.timer.Stop()
		return nil, ErrAbandoned
	}

	f.logger.Info("code sent", "step", StepOTPEntry.String())
	return pending, nil
}

func (f *Flow) failSend(gen uint64, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.current(gen) {
		return ErrAbandoned
	}
	f.pending = nil
	f.logger.Warn("code request failed", "error", err)
	return asProviderError(err)
}

// asProviderError leaves typed errors alone and files anything else as the
// provider being unavailable.
func asProviderError(err error) error {
	var (
		pe *ProviderError
		ce *ChallengeSetupError
		re *RecordStoreError
	)
	if errors.As(err, &pe) || errors.As(err, &ce) || errors.As(err, &re) {
		return err
	}
	return &ProviderError{Kind: Unavailable, Err: err}
}

// Resend requests a new code for the last phone once the cooldown is over.
func (f *Flow) Resend(ctx context.Context) (PendingVerification, error) {
	f.mu.Lock()
	phone := f.phone
	f.mu.Unlock()

	if phone == "" {
		return nil, ErrNoPhone
	}
	if !f.timer.Ready() {
		return nil, ErrResendCooldown
	}
	return f.RequestCode(ctx, phone)
}

// Verify confirms code against pending, which must be the live
// verification. The confirmed identity stays private to the flow until its
// profile record is reconciled; only then is it committed to the provider and
// logged into the session, and the step becomes authenticated. A record store
// failure signs the provider out again so no half signed in state survives.
func (f *Flow) Verify(ctx context.Context, pending PendingVerification, code string) (Identity, error) {
	if err := ValidateCode(code); err != nil {
		return Identity{}, err
	}
	if pending == nil {
		return Identity{}, &ValidationError{Field: "pending", Reason: "no code has been requested"}
	}

	opCtx, gen, done, err := f.begin(ctx)
	if err != nil {
		return Identity{}, err
	}
	defer done()

	f.mu.Lock()
	live := f.pending == pending
	f.mu.Unlock()
	if !live {
		return Identity{}, &ProviderError{Kind: Expired, Err: errors.New("verification was superseded")}
	}

	id, err := pending.Confirm(opCtx, code)
	if err != nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.current(gen) {
			return Identity{}, ErrAbandoned
		}
		f.logger.Warn("code confirmation failed", "error", err)
		return Identity{}, asProviderError(err)
	}

	rec, err := f.reconciler.Reconcile(opCtx, id)
	if err != nil {
		f.logger.Error("profile reconcile failed", "identity_id", id.ID, "error", err)
		f.rollback(opCtx)

		f.mu.Lock()
		abandoned := !f.current(gen)
		f.mu.Unlock()
		if abandoned {
			return Identity{}, ErrAbandoned
		}
		f.session.Logout()
		return Identity{}, err
	}

	id.Name = rec.Name
	id.Email = rec.Email
	id.AvatarURL = rec.AvatarURL
	if rec.Phone != "" {
		id.Phone = rec.Phone
	}

	f.mu.Lock()
	if !f.current(gen) {
		f.mu.Unlock()
		f.rollback(opCtx)
		return Identity{}, ErrAbandoned
	}
	f.step = StepAuthenticated
	f.pending = nil
	f.mu.Unlock()

	f.timer.Reset()
	f.provider.Commit(id)
	f.session.Login(id)
	f.logger.Info("signed in", "identity_id", id.ID)
	return id, nil
}

// rollback drops an uncommitted provider sign in.
func (f *Flow) rollback(ctx context.Context) {
	if err := f.provider.SignOut(context.WithoutCancel(ctx)); err != nil {
		f.logger.Warn("sign out after failed login", "error", err)
	}
}

// Close abandons the flow: the timer stops, in-flight calls are cancelled
// and their results discarded.
func (f *Flow) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.gen++
	f.pending = nil
	f.mu.Unlock()

	f.cancel()
	f.timer.Stop()
}
