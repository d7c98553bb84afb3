package meeting

import (
	"sync"

	"github.com/uydev/Hermes/internal/domain"
	"github.com/uydev/Hermes/internal/secrets"
)

// TokenAccount is where the guest token lives in the secret store.
const TokenAccount = "hermes.guest.jwt"

// SessionStore holds the current guest session and persists only the raw
// token; metadata is re-issued on the next join.
type SessionStore struct {
	store secrets.Store

	mu      sync.RWMutex
	session *domain.GuestSession
}

// NewSessionStore loads any persisted token. A store read failure just
// means no restored session.
func NewSessionStore(store secrets.Store) *SessionStore {
	s := &SessionStore{store: store}
	if token, ok, err := store.Get(TokenAccount); err == nil && ok {
		s.session = &domain.GuestSession{Token: token, Role: domain.RoleParticipant}
	}
	return s
}

func (s *SessionStore) Session() (domain.GuestSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return domain.GuestSession{}, false
	}
	return *s.session, true
}

// SetSession keeps the session in memory and persists the token
// best-effort.
func (s *SessionStore) SetSession(session domain.GuestSession) {
	s.mu.Lock()
	s.session = &session
	s.mu.Unlock()
	_ = s.store.Set(TokenAccount, session.Token)
}

func (s *SessionStore) SignOut() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	_ = s.store.Delete(TokenAccount)
}
