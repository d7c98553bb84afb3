package meeting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uydev/Hermes/internal/domain"
	"github.com/uydev/Hermes/internal/secrets"
)

func TestSessionStorePersistsToken(t *testing.T) {
	store := secrets.NewMemoryStore()
	sessions := NewSessionStore(store)

	_, ok := sessions.Session()
	require.False(t, ok)

	sessions.SetSession(domain.GuestSession{
		Token:       "tok-1",
		Identity:    "id-1",
		DisplayName: "Ada",
		Room:        "demo-room",
		Role:        domain.RoleParticipant,
	})

	v, ok, err := store.Get(TokenAccount)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok-1", v)

	// A new store over the same secrets restores only the raw token.
	restored := NewSessionStore(store)
	session, ok := restored.Session()
	require.True(t, ok)
	require.Equal(t, "tok-1", session.Token)
	require.Empty(t, session.Identity)
}

func TestSessionStoreSignOut(t *testing.T) {
	store := secrets.NewMemoryStore()
	sessions := NewSessionStore(store)
	sessions.SetSession(domain.GuestSession{Token: "tok-1"})

	sessions.SignOut()

	_, ok := sessions.Session()
	require.False(t, ok)
	_, ok, err := store.Get(TokenAccount)
	require.NoError(t, err)
	require.False(t, ok)
}
