package domain

import "time"

// GuestCredential is the verified identity of one guest session.
// Immutable once issued; the subject is generated server-side and
// never derived from client input.
type GuestCredential struct {
	Subject     string
	DisplayName string
	Room        string
	Role        Role
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Issuer      string
	Audience    string
}
