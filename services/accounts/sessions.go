package accounts

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// SessionTTL is how long a login survives without re-authentication.
const SessionTTL = 24 * time.Hour

// CookieName is the session cookie issued on login.
const CookieName = "moodie_session"

type session struct {
	userID  int64
	expires time.Time
}

// SessionStore keeps login sessions in memory. Tokens are random and opaque;
// restarting the server logs everyone out.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]session)}
}

// Create issues a new session token for the user.
func (s *SessionStore) Create(userID int64) string {
	b := make([]byte, 32)
	rand.Read(b)
	token := hex.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{userID: userID, expires: time.Now().Add(SessionTTL)}
	s.sweepLocked()
	return token
}

// Validate resolves a token to its user id if the session is still live.
func (s *SessionStore) Validate(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || time.Now().After(sess.expires) {
		return 0, false
	}
	return sess.userID, true
}

// Revoke ends a single session.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// RevokeUser ends every session belonging to the user. Called when the
// account is deleted.
func (s *SessionStore) RevokeUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if sess.userID == userID {
			delete(s.sessions, token)
		}
	}
}

// sweepLocked drops expired sessions. Caller holds the write lock.
func (s *SessionStore) sweepLocked() {
	now := time.Now()
	for token, sess := range s.sessions {
		if now.After(sess.expires) {
			delete(s.sessions, token)
		}
	}
}
