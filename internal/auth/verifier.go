package auth

import (
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/uydev/Hermes/internal/domain"
)

// Verifier checks guest credentials against the shared signing secret.
type Verifier struct {
	Secret string
}

// Verify validates signature and claims and returns the embedded
// credential. Any violation, including expiry, yields an AuthError with
// no partial claim extraction.
func (v *Verifier) Verify(token string) (domain.GuestCredential, error) {
	secret, err := requireSecret(v.Secret)
	if err != nil {
		return domain.GuestCredential{}, err
	}

	claims := &guestClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &AuthError{Message: "unexpected signing method"}
		}
		return []byte(secret), nil
	})
	if err != nil {
		return domain.GuestCredential{}, &AuthError{Message: "invalid or expired guest credential", Err: err}
	}
	if !parsed.Valid {
		return domain.GuestCredential{}, &AuthError{Message: "invalid guest credential"}
	}
	if !claims.VerifyIssuer(TokenIssuer, true) {
		return domain.GuestCredential{}, &AuthError{Message: "invalid issuer"}
	}
	if !claims.VerifyAudience(TokenAudience, true) {
		return domain.GuestCredential{}, &AuthError{Message: "invalid audience"}
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || claims.DisplayName == "" || claims.Room == "" || !role.Valid() {
		return domain.GuestCredential{}, &AuthError{Message: "invalid guest credential claims"}
	}

	cred := domain.GuestCredential{
		Subject:     claims.Subject,
		DisplayName: claims.DisplayName,
		Room:        claims.Room,
		Role:        role,
		Issuer:      claims.Issuer,
		Audience:    claims.Audience,
	}
	if claims.IssuedAt != 0 {
		cred.IssuedAt = time.Unix(claims.IssuedAt, 0)
	}
	if claims.ExpiresAt != 0 {
		cred.ExpiresAt = time.Unix(claims.ExpiresAt, 0)
	}
	return cred, nil
}
