package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/rs/zerolog/log"

	"github.com/uydev/Hermes/internal/domain"
)

const grantTTL = time.Hour

// videoGrant is the capability claim the media service verifies.
type videoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

type mediaClaims struct {
	jwt.StandardClaims
	Name  string     `json:"name"`
	Video videoGrant `json:"video"`
}

// GrantIssuer exchanges a verified guest credential for a scoped grant
// to the external media service.
type GrantIssuer struct {
	MediaURL  string
	APIKey    string
	APISecret string

	Now func() time.Time
}

func (g *GrantIssuer) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *GrantIssuer) requireConfig() error {
	if g.MediaURL == "" {
		return &ConfigurationError{Message: "media service URL must be set"}
	}
	if g.APIKey == "" {
		return &ConfigurationError{Message: "media service API key must be set"}
	}
	if g.APISecret == "" {
		return &ConfigurationError{Message: "media service API secret must be set"}
	}
	return nil
}

// Issue mints a media grant for the credential. requestedRoom, when
// non-blank after trimming, overrides the room baked into the credential;
// it must satisfy the same rule the guest issuer enforces.
//
// Capability policy is the permissive MVP default: publish and subscribe
// for every role. Restricting by role belongs here when it lands.
func (g *GrantIssuer) Issue(cred domain.GuestCredential, requestedRoom string) (domain.RoomGrant, error) {
	if err := g.requireConfig(); err != nil {
		return domain.RoomGrant{}, err
	}

	room := cred.Room
	if strings.TrimSpace(requestedRoom) != "" {
		normalized, issues := NormalizeRoom(requestedRoom)
		if len(issues) > 0 {
			return domain.RoomGrant{}, &ValidationError{Issues: issues}
		}
		room = normalized
	}

	issuedAt := g.now()
	claims := mediaClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   cred.Subject,
			Issuer:    g.APIKey,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(grantTTL).Unix(),
		},
		Name: cred.DisplayName,
		Video: videoGrant{
			Room:         room,
			RoomJoin:     true,
			CanPublish:   true,
			CanSubscribe: true,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(g.APISecret))
	if err != nil {
		return domain.RoomGrant{}, fmt.Errorf("sign media grant: %w", err)
	}

	log.Info().Str("module", "auth").Str("identity", cred.Subject).Str("room", room).Msg("room grant issued")

	return domain.RoomGrant{
		MediaURL:         g.MediaURL,
		MediaToken:       token,
		ExpiresInSeconds: int64(grantTTL / time.Second),
		Identity:         cred.Subject,
		DisplayName:      cred.DisplayName,
		Room:             room,
		Role:             cred.Role,
	}, nil
}
