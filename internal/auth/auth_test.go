package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"

	"github.com/uydev/Hermes/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := &Issuer{Secret: testSecret}
	verifier := &Verifier{Secret: testSecret}

	session, err := issuer.Issue("Ada", "demo-room", "host")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, "Ada", session.DisplayName)
	require.Equal(t, "demo-room", session.Room)
	require.Equal(t, domain.RoleHost, session.Role)
	require.NotEmpty(t, session.Identity)
	require.Equal(t, int64(3600), session.ExpiresInSeconds)

	cred, err := verifier.Verify(session.Token)
	require.NoError(t, err)
	require.Equal(t, session.Identity, cred.Subject)
	require.Equal(t, "Ada", cred.DisplayName)
	require.Equal(t, "demo-room", cred.Room)
	require.Equal(t, domain.RoleHost, cred.Role)
	require.Equal(t, TokenIssuer, cred.Issuer)
	require.Equal(t, TokenAudience, cred.Audience)
	require.False(t, cred.ExpiresAt.IsZero())
}

func TestIssueDefaultsToParticipant(t *testing.T) {
	issuer := &Issuer{Secret: testSecret}

	session, err := issuer.Issue("Ada", "demo-room", "")
	require.NoError(t, err)
	require.Equal(t, domain.RoleParticipant, session.Role)
}

func TestIssueTrimsInput(t *testing.T) {
	issuer := &Issuer{Secret: testSecret}

	session, err := issuer.Issue("  Ada  ", "  demo-room  ", "")
	require.NoError(t, err)
	require.Equal(t, "Ada", session.DisplayName)
	require.Equal(t, "demo-room", session.Room)
}

func TestIssueRejectsRoomWithSpace(t *testing.T) {
	issuer := &Issuer{Secret: testSecret}

	_, err := issuer.Issue("Ada", "demo room", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	require.Equal(t, "room", verr.Issues[0].Path)
}

func TestIssueItemizesAllIssues(t *testing.T) {
	issuer := &Issuer{Secret: testSecret}

	_, err := issuer.Issue("   ", strings.Repeat("x", 65), "admin")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 3)

	paths := make([]string, 0, 3)
	for _, issue := range verr.Issues {
		paths = append(paths, issue.Path)
	}
	require.ElementsMatch(t, []string{"displayName", "room", "desiredRole"}, paths)
}

func TestIssueCountsDisplayNameInRunes(t *testing.T) {
	issuer := &Issuer{Secret: testSecret}

	// 30 characters but well over 64 bytes; the limit is on characters.
	session, err := issuer.Issue(strings.Repeat("é", 30), "demo-room", "")
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("é", 30), session.DisplayName)

	_, err = issuer.Issue(strings.Repeat("é", 65), "demo-room", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	require.Equal(t, "displayName", verr.Issues[0].Path)
}

func TestIssueRequiresSecret(t *testing.T) {
	for _, secret := range []string{"", "short", "   0123456789   "} {
		issuer := &Issuer{Secret: secret}
		_, err := issuer.Issue("Ada", "demo-room", "")
		var cerr *ConfigurationError
		require.ErrorAs(t, err, &cerr, "secret %q", secret)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	issuer := &Issuer{Secret: testSecret}
	verifier := &Verifier{Secret: testSecret}

	session, err := issuer.Issue("Ada", "demo-room", "")
	require.NoError(t, err)

	parts := strings.Split(session.Token, ".")
	require.Len(t, parts, 3)
	// Flip the payload; the signature no longer matches.
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	_, err = verifier.Verify(tampered)
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := &Issuer{
		Secret: testSecret,
		Now:    func() time.Time { return time.Now().Add(-2 * time.Hour) },
	}
	verifier := &Verifier{Secret: testSecret}

	session, err := issuer.Issue("Ada", "demo-room", "")
	require.NoError(t, err)

	_, err = verifier.Verify(session.Token)
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	claims := guestClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "id-1",
			Issuer:    "someone-else",
			Audience:  TokenAudience,
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		DisplayName: "Ada",
		Room:        "demo-room",
		Role:        "participant",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	verifier := &Verifier{Secret: testSecret}
	_, err = verifier.Verify(token)
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
}

func TestVerifyRejectsMissingClaims(t *testing.T) {
	claims := guestClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "id-1",
			Issuer:    TokenIssuer,
			Audience:  TokenAudience,
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		// Room and DisplayName intentionally absent.
		Role: "participant",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	verifier := &Verifier{Secret: testSecret}
	_, err = verifier.Verify(token)
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
}

func testGrantIssuer() *GrantIssuer {
	return &GrantIssuer{
		MediaURL:  "wss://media.example.com",
		APIKey:    "api-key",
		APISecret: "api-secret",
	}
}

func testCredential() domain.GuestCredential {
	return domain.GuestCredential{
		Subject:     "id-1",
		DisplayName: "Ada",
		Room:        "demo-room",
		Role:        domain.RoleParticipant,
	}
}

func TestGrantDefaultsToCredentialRoom(t *testing.T) {
	grant, err := testGrantIssuer().Issue(testCredential(), "")
	require.NoError(t, err)
	require.Equal(t, "demo-room", grant.Room)
	require.Equal(t, "id-1", grant.Identity)
	require.Equal(t, "wss://media.example.com", grant.MediaURL)
	require.Equal(t, int64(3600), grant.ExpiresInSeconds)
}

func TestGrantExplicitRoomWins(t *testing.T) {
	grant, err := testGrantIssuer().Issue(testCredential(), "other-room")
	require.NoError(t, err)
	require.Equal(t, "other-room", grant.Room)
}

func TestGrantRejectsInvalidRequestedRoom(t *testing.T) {
	for _, room := range []string{"bad room!", "room/../other", strings.Repeat("x", 65)} {
		_, err := testGrantIssuer().Issue(testCredential(), room)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "room %q", room)
		require.Len(t, verr.Issues, 1)
		require.Equal(t, "room", verr.Issues[0].Path)
	}
}

func TestGrantTreatsBlankRequestedRoomAsAbsent(t *testing.T) {
	grant, err := testGrantIssuer().Issue(testCredential(), "   ")
	require.NoError(t, err)
	require.Equal(t, "demo-room", grant.Room)
}

func TestGrantTrimsRequestedRoom(t *testing.T) {
	grant, err := testGrantIssuer().Issue(testCredential(), "  other-room  ")
	require.NoError(t, err)
	require.Equal(t, "other-room", grant.Room)
}

func TestGrantTokenClaims(t *testing.T) {
	grant, err := testGrantIssuer().Issue(testCredential(), "")
	require.NoError(t, err)

	claims := &mediaClaims{}
	_, err = jwt.ParseWithClaims(grant.MediaToken, claims, func(t *jwt.Token) (any, error) {
		return []byte("api-secret"), nil
	})
	require.NoError(t, err)
	require.Equal(t, "id-1", claims.Subject)
	require.Equal(t, "api-key", claims.Issuer)
	require.Equal(t, "Ada", claims.Name)
	require.Equal(t, "demo-room", claims.Video.Room)
	require.True(t, claims.Video.RoomJoin)
	require.True(t, claims.Video.CanPublish)
	require.True(t, claims.Video.CanSubscribe)
}

func TestGrantRequiresMediaConfig(t *testing.T) {
	cases := []*GrantIssuer{
		{APIKey: "k", APISecret: "s"},
		{MediaURL: "wss://media", APISecret: "s"},
		{MediaURL: "wss://media", APIKey: "k"},
	}
	for _, g := range cases {
		_, err := g.Issue(testCredential(), "")
		var cerr *ConfigurationError
		require.ErrorAs(t, err, &cerr)
	}
}
