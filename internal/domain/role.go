// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

var ErrUnknownRole = errors.New("unknown role")

// Role is the capability class a guest asserts for a room.
type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// ParseRole maps a client-supplied role string to a Role.
// Empty input defaults to participant.
func ParseRole(s string) (Role, error) {
	switch s {
	case "":
		return RoleParticipant, nil
	case string(RoleHost):
		return RoleHost, nil
	case string(RoleParticipant):
		return RoleParticipant, nil
	}
	return "", ErrUnknownRole
}

func (r Role) Valid() bool {
	return r == RoleHost || r == RoleParticipant
}
