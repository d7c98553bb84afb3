package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uydev/Hermes/internal/domain"
)

func TestGuestAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/guest", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Ada", req["displayName"])
		require.Equal(t, "demo-room", req["room"])

		json.NewEncoder(w).Encode(domain.GuestSession{
			Token:       "tok-1",
			Identity:    "id-1",
			DisplayName: "Ada",
			Room:        "demo-room",
			Role:        domain.RoleParticipant,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/")
	session, err := client.GuestAuth(context.Background(), "Ada", "demo-room", "")
	require.NoError(t, err)
	require.Equal(t, "tok-1", session.Token)
	require.Equal(t, "id-1", session.Identity)
}

func TestRoomsJoinSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rooms/join", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(domain.RoomGrant{
			MediaURL:   "wss://media.example.com",
			MediaToken: "media-tok",
			Identity:   "id-1",
			Room:       "demo-room",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	grant, err := client.RoomsJoin(context.Background(), "tok-1", "")
	require.NoError(t, err)
	require.Equal(t, "media-tok", grant.MediaToken)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.RoomsJoin(context.Background(), "bad", "")

	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, http.StatusUnauthorized, serr.Code)
}

func TestRejoinSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(domain.RoomGrant{Room: req["room"], MediaToken: "fresh"})
	}))
	defer srv.Close()

	source := &RejoinSource{Client: NewClient(srv.URL), Token: "tok-1", Room: "demo-room"}
	grant, err := source.IssueGrant(context.Background())
	require.NoError(t, err)
	require.Equal(t, "demo-room", grant.Room)
	require.Equal(t, "fresh", grant.MediaToken)
}
