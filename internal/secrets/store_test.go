package secrets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	_, ok, err := s.Get("acct")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set("acct", "value"))
	v, ok, err := s.Get("acct")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", v)

	require.NoError(t, s.Delete("acct"))
	_, ok, err = s.Get("acct")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := s.Get("hermes.guest.jwt")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set("hermes.guest.jwt", "token"))
	v, ok, err := s.Get("hermes.guest.jwt")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "token", v)

	require.NoError(t, s.Delete("hermes.guest.jwt"))
	// Deleting a missing account is not an error.
	require.NoError(t, s.Delete("hermes.guest.jwt"))
}
