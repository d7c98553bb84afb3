// Package backend is the client for the Hermes auth API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/uydev/Hermes/internal/domain"
)

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend request failed (HTTP %d)", e.Code)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, path, bearer string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

type guestAuthRequest struct {
	DisplayName string `json:"displayName"`
	Room        string `json:"room"`
	DesiredRole string `json:"desiredRole,omitempty"`
}

// GuestAuth requests a guest credential from /auth/guest.
func (c *Client) GuestAuth(ctx context.Context, displayName, room, desiredRole string) (domain.GuestSession, error) {
	var session domain.GuestSession
	err := c.post(ctx, "/auth/guest", "", guestAuthRequest{
		DisplayName: displayName,
		Room:        room,
		DesiredRole: desiredRole,
	}, &session)
	return session, err
}

type roomsJoinRequest struct {
	Room string `json:"room,omitempty"`
}

// RoomsJoin exchanges a guest token for a media grant via /rooms/join.
// room may be empty to join the credential's room.
func (c *Client) RoomsJoin(ctx context.Context, token, room string) (domain.RoomGrant, error) {
	var grant domain.RoomGrant
	err := c.post(ctx, "/rooms/join", token, roomsJoinRequest{Room: room}, &grant)
	return grant, err
}

// RejoinSource satisfies the session controller's grant source by
// re-minting a grant with the stored guest token.
type RejoinSource struct {
	Client *Client
	Token  string
	Room   string
}

func (r *RejoinSource) IssueGrant(ctx context.Context) (domain.RoomGrant, error) {
	return r.Client.RoomsJoin(ctx, r.Token, r.Room)
}
