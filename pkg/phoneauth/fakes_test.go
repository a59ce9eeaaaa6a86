package phoneauth_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
)

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (c *fakeClock) NewTicker(time.Duration) phoneauth.Ticker {
	t := &fakeTicker{ch: make(chan time.Time)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

func (c *fakeClock) last() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[len(c.tickers)-1]
}

// tick delivers one tick to the newest ticker.
func (c *fakeClock) tick() { c.last().ch <- time.Now() }

type fakeRenderer struct {
	calls atomic.Int32
	err   error
}

func (r *fakeRenderer) RenderChallenge(_ context.Context, containerID string) (string, time.Time, error) {
	n := r.calls.Add(1)
	if r.err != nil {
		return "", time.Time{}, r.err
	}
	return containerID + "-token-" + string(rune('0'+n)), time.Time{}, nil
}

type fakePending struct {
	provider *fakeProvider
	code     string
	identity phoneauth.Identity
	used     atomic.Bool
}

func (p *fakePending) Confirm(ctx context.Context, code string) (phoneauth.Identity, error) {
	p.provider.confirms.Add(1)
	p.provider.mu.Lock()
	block := p.provider.confirmBlock
	p.provider.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return phoneauth.Identity{}, ctx.Err()
		}
	}

	if p.used.Load() {
		return phoneauth.Identity{}, &phoneauth.ProviderError{Kind: phoneauth.Expired}
	}
	if code != p.code {
		return phoneauth.Identity{}, &phoneauth.ProviderError{Kind: phoneauth.InvalidCode}
	}
	p.used.Store(true)
	return p.identity, nil
}

// fakeProvider is an in-memory identity provider and auth state source.
type fakeProvider struct {
	mu           sync.Mutex
	sends        []string
	tokens       []string
	sendErr      error
	sendBlock    chan struct{}
	confirmBlock chan struct{}
	signOuts     int
	commits      []phoneauth.Identity
	committed    bool
	confirms     atomic.Int32
	identityID   string
	code         string
	subs         map[int]func(*phoneauth.Identity)
	nextSub      int
	// While hold is set pushes are queued until release.
	hold bool
	held []*phoneauth.Identity
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{identityID: "abc123", code: "424242", subs: map[int]func(*phoneauth.Identity){}}
}

func (p *fakeProvider) SendCode(ctx context.Context, phone string, challenge *phoneauth.ChallengeToken) (phoneauth.PendingVerification, error) {
	p.mu.Lock()
	p.sends = append(p.sends, phone)
	p.tokens = append(p.tokens, challenge.Value)
	err, block := p.sendErr, p.sendBlock
	p.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &fakePending{
		provider: p,
		code:     p.code,
		identity: phoneauth.Identity{ID: p.identityID, Phone: phone, Token: "id-token"},
	}, nil
}

func (p *fakeProvider) Commit(id phoneauth.Identity) {
	p.mu.Lock()
	p.commits = append(p.commits, id)
	p.committed = true
	p.mu.Unlock()
	p.push(&id)
}

func (p *fakeProvider) SignOut(context.Context) error {
	p.mu.Lock()
	p.signOuts++
	was := p.committed
	p.committed = false
	p.mu.Unlock()
	if was {
		p.push(nil)
	}
	return nil
}

func (p *fakeProvider) SubscribeAuthState(fn func(*phoneauth.Identity)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()
	fn(nil)
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *fakeProvider) push(id *phoneauth.Identity) {
	p.mu.Lock()
	if p.hold {
		p.held = append(p.held, id)
		p.mu.Unlock()
		return
	}
	subs := make([]func(*phoneauth.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	for _, fn := range subs {
		fn(id)
	}
}

// release delivers the queued pushes and stops holding.
func (p *fakeProvider) release() {
	p.mu.Lock()
	held := p.held
	p.hold, p.held = false, nil
	p.mu.Unlock()
	for _, id := range held {
		p.push(id)
	}
}

func (p *fakeProvider) commitCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.commits)
}

func (p *fakeProvider) sendCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sends)
}

func (p *fakeProvider) subscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

type fakeRecords struct {
	mu      sync.Mutex
	m       map[string]phoneauth.ProfileRecord
	getErr  error
	putErr  error
	creates int
	// onGet runs before every read, outside the lock.
	onGet func()
	// raceWith is stored right before the first create-only put, as if
	// another writer got there first.
	raceWith *phoneauth.ProfileRecord
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{m: map[string]phoneauth.ProfileRecord{}}
}

func (r *fakeRecords) GetRecord(_ context.Context, id string) (phoneauth.ProfileRecord, error) {
	if r.onGet != nil {
		r.onGet()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return phoneauth.ProfileRecord{}, r.getErr
	}
	rec, ok := r.m[id]
	if !ok {
		return phoneauth.ProfileRecord{}, phoneauth.ErrRecordNotFound
	}
	return rec, nil
}

func (r *fakeRecords) PutRecord(_ context.Context, rec phoneauth.ProfileRecord, createOnly bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	if createOnly && r.raceWith != nil {
		r.m[r.raceWith.ID] = *r.raceWith
		r.raceWith = nil
	}
	if _, ok := r.m[rec.ID]; ok && createOnly {
		return phoneauth.ErrRecordExists
	}
	if createOnly {
		r.creates++
	}
	r.m[rec.ID] = rec
	return nil
}

func (r *fakeRecords) get(id string) (phoneauth.ProfileRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.m[id]
	return rec, ok
}

var errBoom = errors.New("boom")
