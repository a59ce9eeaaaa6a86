package phoneauth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ChallengeState is the lifecycle of a ChallengeToken.
type ChallengeState int

const (
	ChallengeUnrendered ChallengeState = iota
	ChallengeRendered
)

// ChallengeToken is an anti-automation proof bound to a container.
type ChallengeToken struct {
	ContainerID string
	Value       string
	ExpiresAt   time.Time
	State       ChallengeState
}

var errNoContainer = errors.New("container id is required")

// ChallengeIssuer holds at most one ChallengeToken for a login session.
// Every Flow owns its own issuer, so a new login session starts without a
// token.
type ChallengeIssuer struct {
	renderer ChallengeRenderer
	now      func() time.Time

	mu    sync.Mutex
	token *ChallengeToken
}

func NewChallengeIssuer(r ChallengeRenderer) *ChallengeIssuer {
	return &ChallengeIssuer{renderer: r, now: time.Now}
}

// Obtain returns the held token, rendering one into containerID first when
// none is held or the held one has expired. It never retries.
func (c *ChallengeIssuer) Obtain(ctx context.Context, containerID string) (*ChallengeToken, error) {
	containerID = strings.TrimSpace(containerID)
	if containerID == "" {
		return nil, &ChallengeSetupError{ContainerID: containerID, Err: errNoContainer}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t := c.token; t != nil && (t.ExpiresAt.IsZero() || c.now().Before(t.ExpiresAt)) {
		return t, nil
	}

	t := &ChallengeToken{ContainerID: containerID, State: ChallengeUnrendered}
	value, expiresAt, err := c.renderer.RenderChallenge(ctx, containerID)
	if err != nil {
		return nil, &ChallengeSetupError{ContainerID: containerID, Err: err}
	}
	t.Value = value
	t.ExpiresAt = expiresAt
	t.State = ChallengeRendered

	c.token = t
	return t, nil
}

// Current returns the held token or nil.
func (c *ChallengeIssuer) Current() *ChallengeToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Reset drops the held token; the next Obtain renders a fresh one.
func (c *ChallengeIssuer) Reset() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}
