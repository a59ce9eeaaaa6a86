package phoneauth_test

import (
	"sync"
	"testing"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	alice := phoneauth.Identity{ID: "a", Phone: "+919876543210"}
	bob := phoneauth.Identity{ID: "b", Phone: "+919876500000"}
	loading := phoneauth.SessionState{Loading: true}

	t.Run("provider clears loading", func(t *testing.T) {
		s := phoneauth.Reduce(loading, phoneauth.ProviderUpdated{Identity: nil})
		require.False(t, s.Loading)
		require.False(t, s.SignedIn())
	})

	t.Run("manual events keep loading", func(t *testing.T) {
		s := phoneauth.Reduce(loading, phoneauth.ManualLogin{Identity: alice})
		require.True(t, s.Loading)
		require.Equal(t, "a", s.Identity.ID)

		s = phoneauth.Reduce(s, phoneauth.LoggedOut{})
		require.True(t, s.Loading)
		require.Nil(t, s.Identity)
	})

	t.Run("last write wins", func(t *testing.T) {
		s := phoneauth.Reduce(loading, phoneauth.ProviderUpdated{Identity: &alice})
		s = phoneauth.Reduce(s, phoneauth.ManualLogin{Identity: bob})
		require.Equal(t, "b", s.Identity.ID)

		s = phoneauth.Reduce(s, phoneauth.ProviderUpdated{Identity: &alice})
		require.Equal(t, "a", s.Identity.ID)

		s = phoneauth.Reduce(s, phoneauth.ProviderUpdated{Identity: nil})
		require.Nil(t, s.Identity)
		require.False(t, s.Loading, "loading never comes back")
	})

	t.Run("late provider update keeps the profile", func(t *testing.T) {
		withProfile := alice
		withProfile.Name = "User"
		withProfile.AvatarURL = "https://example.com/a.png"

		s := phoneauth.Reduce(loading, phoneauth.ManualLogin{Identity: withProfile})
		s = phoneauth.Reduce(s, phoneauth.ProviderUpdated{Identity: &alice})
		require.Equal(t, "User", s.Identity.Name)
		require.Equal(t, "https://example.com/a.png", s.Identity.AvatarURL)

		s = phoneauth.Reduce(s, phoneauth.ProviderUpdated{Identity: &bob})
		require.Empty(t, s.Identity.Name, "another identity starts bare")
	})

	t.Run("state does not alias the event", func(t *testing.T) {
		id := alice
		s := phoneauth.Reduce(loading, phoneauth.ProviderUpdated{Identity: &id})
		id.ID = "mutated"
		require.Equal(t, "a", s.Identity.ID)
	})
}

func TestSessionStoreLifecycle(t *testing.T) {
	provider := newFakeProvider()
	store := phoneauth.NewSessionStore(provider, slogx.Discard())
	require.True(t, store.State().Loading)

	var (
		mu   sync.Mutex
		seen []phoneauth.SessionState
	)
	store.Subscribe(func(s phoneauth.SessionState) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	store.Start()
	store.Start()
	require.Equal(t, 1, provider.subscriberCount())
	require.False(t, store.State().Loading)
	require.False(t, store.State().SignedIn())

	provider.push(&phoneauth.Identity{ID: "abc123"})
	require.Equal(t, "abc123", store.State().Identity.ID)

	store.Logout()
	require.False(t, store.State().SignedIn())

	mu.Lock()
	require.Len(t, seen, 3)
	mu.Unlock()

	store.Close()
	require.Zero(t, provider.subscriberCount())

	store.Login(phoneauth.Identity{ID: "late"})
	require.False(t, store.State().SignedIn(), "events after close are ignored")
}

func TestSessionStoreUnsubscribe(t *testing.T) {
	store := phoneauth.NewSessionStore(newFakeProvider(), slogx.Discard())
	calls := 0
	unsub := store.Subscribe(func(phoneauth.SessionState) { calls++ })

	store.Login(phoneauth.Identity{ID: "a"})
	unsub()
	store.Logout()
	require.Equal(t, 1, calls)
}

func TestGate(t *testing.T) {
	g := phoneauth.Gate{}

	require.Equal(t, phoneauth.DecisionPlaceholder,
		g.Evaluate(phoneauth.SessionState{Loading: true, Identity: &phoneauth.Identity{ID: "a"}}).Decision)

	v := g.Evaluate(phoneauth.SessionState{})
	require.Equal(t, phoneauth.DecisionRedirect, v.Decision)
	require.Equal(t, phoneauth.DefaultLoginPath, v.RedirectTo)

	v = phoneauth.Gate{LoginPath: "/signin"}.Evaluate(phoneauth.SessionState{})
	require.Equal(t, "/signin", v.RedirectTo)

	require.Equal(t, phoneauth.DecisionRender,
		g.Evaluate(phoneauth.SessionState{Identity: &phoneauth.Identity{ID: "a"}}).Decision)
}
