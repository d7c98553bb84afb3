// Package auth mints and verifies the two short-lived HS256 tokens of the
// system: the guest credential and the media room grant.
package auth

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/uydev/Hermes/internal/domain"
)

const (
	TokenIssuer   = "hermes-backend"
	TokenAudience = "hermes-client"

	credentialTTL = time.Hour
	minSecretLen  = 16
	maxFieldLen   = 64
)

var roomPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NormalizeRoom trims a room code and reports every rule it violates:
// non-empty, at most 64 characters, URL-safe charset. Both the guest
// issuer and the join endpoint apply the same rule.
func NormalizeRoom(room string) (string, []FieldIssue) {
	room = strings.TrimSpace(room)
	var issues []FieldIssue
	switch {
	case room == "":
		issues = append(issues, FieldIssue{Path: "room", Message: "must not be empty"})
	case utf8.RuneCountInString(room) > maxFieldLen:
		issues = append(issues, FieldIssue{Path: "room", Message: fmt.Sprintf("must be at most %d characters", maxFieldLen)})
	case !roomPattern.MatchString(room):
		issues = append(issues, FieldIssue{Path: "room", Message: "must be URL-safe (letters, numbers, _ or -)"})
	}
	return room, issues
}

// guestClaims is the wire form of a guest credential.
type guestClaims struct {
	jwt.StandardClaims
	DisplayName string `json:"displayName"`
	Room        string `json:"room"`
	Role        string `json:"role"`
}

// Issuer mints signed guest credentials.
type Issuer struct {
	Secret string

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (s *Issuer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// requireSecret validates the signing secret on every call;
// a bad secret is never cached as good.
func requireSecret(secret string) (string, error) {
	if len(strings.TrimSpace(secret)) < minSecretLen {
		return "", &ConfigurationError{
			Message: fmt.Sprintf("signing secret must be set (min %d chars)", minSecretLen),
		}
	}
	return secret, nil
}

// Issue validates the join request and mints a signed guest credential.
// The subject is a fresh uuid, never derived from client input.
func (s *Issuer) Issue(displayName, room, desiredRole string) (domain.GuestSession, error) {
	displayName = strings.TrimSpace(displayName)

	var issues []FieldIssue
	if displayName == "" {
		issues = append(issues, FieldIssue{Path: "displayName", Message: "must not be empty"})
	} else if utf8.RuneCountInString(displayName) > maxFieldLen {
		issues = append(issues, FieldIssue{Path: "displayName", Message: fmt.Sprintf("must be at most %d characters", maxFieldLen)})
	}
	room, roomIssues := NormalizeRoom(room)
	issues = append(issues, roomIssues...)
	role, err := domain.ParseRole(desiredRole)
	if err != nil {
		issues = append(issues, FieldIssue{Path: "desiredRole", Message: "must be host or participant"})
	}
	if len(issues) > 0 {
		return domain.GuestSession{}, &ValidationError{Issues: issues}
	}

	secret, err := requireSecret(s.Secret)
	if err != nil {
		return domain.GuestSession{}, err
	}

	identity := uuid.NewString()
	issuedAt := s.now()
	expiresAt := issuedAt.Add(credentialTTL)

	claims := guestClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   identity,
			Issuer:    TokenIssuer,
			Audience:  TokenAudience,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
		DisplayName: displayName,
		Room:        room,
		Role:        string(role),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return domain.GuestSession{}, fmt.Errorf("sign guest credential: %w", err)
	}

	log.Info().Str("module", "auth").Str("identity", identity).Str("room", room).Str("role", string(role)).Msg("guest credential issued")

	return domain.GuestSession{
		Token:            token,
		ExpiresAt:        expiresAt.Unix(),
		ExpiresInSeconds: int64(credentialTTL / time.Second),
		Identity:         identity,
		DisplayName:      displayName,
		Room:             room,
		Role:             role,
	}, nil
}
