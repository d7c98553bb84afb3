package domain

// RoomGrant authorizes one identity to join one room on the external
// media service. Minted per connection attempt, never persisted.
type RoomGrant struct {
	MediaURL         string `json:"mediaUrl"`
	MediaToken       string `json:"mediaToken"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
	Identity         string `json:"identity"`
	DisplayName      string `json:"displayName"`
	Room             string `json:"room"`
	Role             Role   `json:"role"`
}
