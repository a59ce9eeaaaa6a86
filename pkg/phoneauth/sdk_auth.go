package phoneauth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// RenderChallenge asks the service for a challenge token bound to
// containerID.
func (c *SDKClient) RenderChallenge(ctx context.Context, containerID string) (string, time.Time, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/challenges", "", ChallengeRequest{ContainerID: containerID}, nil)
	if err != nil {
		return "", time.Time{}, err
	}
	var out ChallengeResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return "", time.Time{}, err
	}
	return out.ChallengeToken, out.ExpiresAt, nil
}

// SendCode requests a code for phone (E.164).
func (c *SDKClient) SendCode(ctx context.Context, phone string, challenge *ChallengeToken) (PendingVerification, error) {
	if challenge == nil || challenge.State != ChallengeRendered {
		return nil, &ProviderError{Kind: ChallengeRejected, Err: errors.New("challenge not rendered")}
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/otp/send", "", SendCodeRequest{
		Phone:          phone,
		ChallengeToken: challenge.Value,
	}, nil)
	if err != nil {
		return nil, providerError(err)
	}
	var out SendCodeResponse
	if err := decodeJSON(resp, &out, http.StatusAccepted); err != nil {
		return nil, providerError(err)
	}

	return &remoteVerification{client: c, id: out.VerificationID, expiresAt: out.ExpiresAt}, nil
}

// remoteVerification is the PendingVerification handed out by SendCode.
type remoteVerification struct {
	client    *SDKClient
	id        string
	expiresAt time.Time
}

// ID is the server side verification id.
func (v *remoteVerification) ID() string { return v.id }

func (v *remoteVerification) ExpiresAt() time.Time { return v.expiresAt }

// Confirm exchanges the code for an identity. The identity can make record
// calls straight away but is neither saved nor pushed to auth state
// subscribers until Commit.
func (v *remoteVerification) Confirm(ctx context.Context, code string) (Identity, error) {
	c := v.client
	resp, err := c.do(ctx, http.MethodPost, "/v1/otp/confirm", "", ConfirmCodeRequest{
		VerificationID: v.id,
		Code:           code,
	}, nil)
	if err != nil {
		return Identity{}, providerError(err)
	}
	var out ConfirmCodeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return Identity{}, providerError(err)
	}

	id := Identity{
		ID:    out.Identity.ID,
		Phone: out.Identity.Phone,
		Email: out.Identity.Email,
		Token: out.IDToken,
	}
	c.authMu.Lock()
	c.confirmed = cloneIdentity(&id)
	c.authMu.Unlock()
	return id, nil
}

// Commit makes id the signed in identity: the token is persisted and every
// auth state subscriber receives id.
func (c *SDKClient) Commit(id Identity) {
	if err := c.Tokens.Save(id.Token); err != nil {
		c.Logger.Warn("failed to persist identity token", "error", err)
	}
	c.authMu.Lock()
	defer c.authMu.Unlock()
	c.confirmed = nil
	c.broadcast(&id)
}

// VerificationID returns the server id behind a PendingVerification created
// by this client, or "".
func VerificationID(p PendingVerification) string {
	if v, ok := p.(*remoteVerification); ok {
		return v.id
	}
	return ""
}

// Session resolves an identity token to its identity.
func (c *SDKClient) Session(ctx context.Context, token string) (Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/session", token, nil, nil)
	if err != nil {
		return Identity{}, err
	}
	var out IdentityResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return Identity{}, err
	}
	return Identity{ID: out.ID, Phone: out.Phone, Email: out.Email, Token: token}, nil
}

// DevCode fetches a sent code from the service's development SMS sink.
func (c *SDKClient) DevCode(ctx context.Context, verificationID string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/dev/otp/"+url.PathEscape(verificationID), "", nil, nil)
	if err != nil {
		return "", err
	}
	var out DevCodeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.Code, nil
}

// SignOut forgets the stored token and any confirmed identity. The service
// keeps no session, so there is no call to make. Subscribers hear about it
// when a committed identity was signed in or no state has been reported yet.
func (c *SDKClient) SignOut(ctx context.Context) error {
	err := c.Tokens.Clear()

	c.authMu.Lock()
	defer c.authMu.Unlock()
	c.confirmed = nil
	if c.current != nil || !c.resolved {
		c.broadcast(nil)
	}
	return err
}

// Current returns the committed identity, or nil.
func (c *SDKClient) Current() *Identity {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	return cloneIdentity(c.current)
}

// SubscribeAuthState delivers the current identity to fn and then every
// change, in order, on a goroutine owned by the subscription. The first
// delivery waits until the stored token has been checked.
func (c *SDKClient) SubscribeAuthState(fn func(*Identity)) func() {
	sub := newAuthSubscriber(fn)

	c.authMu.Lock()
	c.subs[sub] = struct{}{}
	if c.resolved {
		sub.push(cloneIdentity(c.current))
	}
	c.authMu.Unlock()

	c.resolveOnce.Do(func() { go c.restore() })

	return func() {
		c.authMu.Lock()
		delete(c.subs, sub)
		c.authMu.Unlock()
		sub.close()
	}
}

// restore loads the stored token and checks it with the service.
func (c *SDKClient) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var id *Identity
	token, err := c.Tokens.Load()
	switch {
	case err != nil:
		c.Logger.Warn("failed to load identity token", "error", err)
	case token != "":
		got, err := c.Session(ctx, token)
		var se *ServiceError
		switch {
		case err == nil:
			id = &got
		case errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized:
			c.Logger.Info("stored identity token rejected, signing out")
			_ = c.Tokens.Clear()
		default:
			c.Logger.Warn("failed to restore session", "error", err)
		}
	}

	c.authMu.Lock()
	defer c.authMu.Unlock()
	if c.resolved {
		// A sign in or sign out already happened and was broadcast.
		return
	}
	c.broadcast(id)
}

// broadcast records id as current and queues it for every subscriber.
// Callers hold authMu.
func (c *SDKClient) broadcast(id *Identity) {
	c.resolved = true
	c.current = cloneIdentity(id)
	for sub := range c.subs {
		sub.push(cloneIdentity(id))
	}
}

// authSubscriber queues identities for one callback so a slow page never
// blocks the client or reorders events.
type authSubscriber struct {
	fn   func(*Identity)
	wake chan struct{}
	quit chan struct{}
	once sync.Once

	mu    sync.Mutex
	queue []*Identity
}

func newAuthSubscriber(fn func(*Identity)) *authSubscriber {
	s := &authSubscriber{
		fn:   fn,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *authSubscriber) push(id *Identity) {
	s.mu.Lock()
	s.queue = append(s.queue, id)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *authSubscriber) close() {
	s.once.Do(func() { close(s.quit) })
}

func (s *authSubscriber) run() {
	for {
		select {
		case <-s.quit:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			next := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case <-s.quit:
				return
			default:
			}
			s.fn(next)
		}
	}
}
