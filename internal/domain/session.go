package domain

// GuestSession is what the client holds after /auth/guest: the raw
// signed token plus the claims echoed back for display.
type GuestSession struct {
	Token            string `json:"token"`
	ExpiresAt        int64  `json:"expiresAt"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
	Identity         string `json:"identity"`
	DisplayName      string `json:"displayName"`
	Room             string `json:"room"`
	Role             Role   `json:"role"`
}
