package phoneauth

import (
	"log/slog"
	"sync"
)

// SessionState is who is signed in. Loading is true until the provider has
// reported for the first time and never returns to true.
type SessionState struct {
	Identity *Identity
	Loading  bool
}

// SignedIn reports whether an identity is present.
func (s SessionState) SignedIn() bool { return s.Identity != nil }

// Event is a session transition. The set is closed: ProviderUpdated,
// ManualLogin and LoggedOut.
type Event interface {
	sessionEvent()
}

// ProviderUpdated carries the provider's view of the identity; nil means
// signed out.
type ProviderUpdated struct {
	Identity *Identity
}

// ManualLogin is dispatched by the verify step once the profile is ready.
type ManualLogin struct {
	Identity Identity
}

type LoggedOut struct{}

func (ProviderUpdated) sessionEvent() {}
func (ManualLogin) sessionEvent()     {}
func (LoggedOut) sessionEvent()       {}

// Reduce applies e to s. The last event wins: there is no ordering between
// provider updates and manual logins. A provider update for the identity
// already held keeps the profile fields the provider left empty.
func Reduce(s SessionState, e Event) SessionState {
	switch e := e.(type) {
	case ProviderUpdated:
		next := cloneIdentity(e.Identity)
		if next != nil && s.Identity != nil && s.Identity.ID == next.ID {
			if next.Name == "" {
				next.Name = s.Identity.Name
			}
			if next.AvatarURL == "" {
				next.AvatarURL = s.Identity.AvatarURL
			}
		}
		return SessionState{Identity: next, Loading: false}
	case ManualLogin:
		return SessionState{Identity: cloneIdentity(&e.Identity), Loading: s.Loading}
	case LoggedOut:
		return SessionState{Loading: s.Loading}
	default:
		return s
	}
}

func cloneIdentity(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

// SessionStore is the single holder of SessionState for the process. It is
// built once at startup, started to subscribe to the provider and closed at
// shutdown.
type SessionStore struct {
	source AuthStateSource
	logger *slog.Logger

	mu          sync.Mutex
	state       SessionState
	subs        map[int]func(SessionState)
	nextSub     int
	unsubscribe func()
	closed      bool
}

// NewSessionStore builds a store in the loading state. logger may be nil.
func NewSessionStore(source AuthStateSource, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		source: source,
		logger: logger,
		state:  SessionState{Loading: true},
		subs:   make(map[int]func(SessionState)),
	}
}

// Start subscribes to the provider. Calling it twice is a no-op.
func (s *SessionStore) Start() {
	s.mu.Lock()
	if s.unsubscribe != nil || s.closed {
		s.mu.Unlock()
		return
	}
	s.unsubscribe = func() {}
	s.mu.Unlock()

	unsub := s.source.SubscribeAuthState(func(id *Identity) {
		s.Dispatch(ProviderUpdated{Identity: id})
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsub()
		return
	}
	s.unsubscribe = unsub
	s.mu.Unlock()
}

// Close unsubscribes from the provider and drops page subscribers. Later
// events are ignored.
func (s *SessionStore) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.subs = map[int]func(SessionState){}
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// State returns a copy of the current state.
func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{Identity: cloneIdentity(s.state.Identity), Loading: s.state.Loading}
}

// Dispatch is the only way the state changes. Subscribers are called after
// the lock is released with the state the event produced.
func (s *SessionStore) Dispatch(e Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = Reduce(s.state, e)
	next := SessionState{Identity: cloneIdentity(s.state.Identity), Loading: s.state.Loading}
	subs := make([]func(SessionState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.logger.Debug("session updated", "event", eventName(e), "signed_in", next.SignedIn(), "loading", next.Loading)
	for _, fn := range subs {
		fn(next)
	}
}

func eventName(e Event) string {
	switch e.(type) {
	case ProviderUpdated:
		return "provider_updated"
	case ManualLogin:
		return "manual_login"
	case LoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Login sets the identity without asking the provider.
func (s *SessionStore) Login(id Identity) { s.Dispatch(ManualLogin{Identity: id}) }

// Logout clears the identity.
func (s *SessionStore) Logout() { s.Dispatch(LoggedOut{}) }

// Subscribe calls fn after every change until the returned func is called.
func (s *SessionStore) Subscribe(fn func(SessionState)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
