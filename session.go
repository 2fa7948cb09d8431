package cafeadmin

import (
	"sync"
	"time"

	orm "github.com/medatechnology/simpleorm"

	"github.com/medatechnology/goutil/medattlmap"
)

// SerializeAdmin keeps the minimal stable subset of an admin row for
// caching. The identifier is read from admin_id first, then id, and is
// written back under both aliases; a row with neither yields nil. The
// password column is never carried over.
func SerializeAdmin(row orm.DBRecord, columns ColumnMap) *AdminSession {
	if row.Data == nil {
		return nil
	}

	adminID := ""
	if value, ok := row.Data["admin_id"]; ok && value != nil {
		adminID = stringValue(value)
	}
	if adminID == "" {
		if value, ok := columns.Value(row, FieldAdminID); ok && value != nil {
			adminID = stringValue(value)
		}
	}
	if adminID == "" {
		if value, ok := row.Data["id"]; ok && value != nil {
			adminID = stringValue(value)
		}
	}
	if adminID == "" {
		return nil
	}

	nameValue, _ := columns.Value(row, FieldName)
	emailValue, _ := columns.Value(row, FieldEmail)
	cafeValue, _ := columns.Value(row, FieldCafeID)
	createdValue, _ := columns.Value(row, FieldCreatedAt)

	return &AdminSession{
		ID:        adminID,
		AdminID:   adminID,
		CafeID:    stringValue(cafeValue),
		Name:      stringValue(nameValue),
		Email:     stringValue(emailValue),
		CreatedAt: stringValue(createdValue),
	}
}

// SessionStore is the token-keyed cache of serialized admin records.
// Primary storage is a TTL map so idle sessions expire on their own; a
// probe at construction feature-detects it once and falls back to a
// plain mutex map when the probe fails, so callers never branch on the
// storage flavor.
type SessionStore struct {
	ttl      *medattlmap.TTLMap
	exp      time.Duration
	fallback map[string]AdminSession
	mu       sync.RWMutex
	useTTL   bool
	max      int
}

// NewSessionStore builds the store and runs the one-time probe.
func NewSessionStore(exp, ticker time.Duration, maxSessions int) *SessionStore {
	if exp <= 0 {
		exp = DEFAULT_SESSION_EXPIRES_MINUTES
	}
	if ticker <= 0 {
		ticker = DEFAULT_TTL_TICKER_MINUTES
	}
	if maxSessions <= 0 {
		maxSessions = DEFAULT_MAX_SESSIONS
	}

	store := &SessionStore{
		exp:      exp,
		fallback: make(map[string]AdminSession),
		max:      maxSessions,
	}
	store.ttl = medattlmap.NewTTLMap(exp, ticker)
	store.useTTL = store.probeTTL()
	return store
}

// probeTTL writes and removes a throwaway entry. Detection happens
// once; the result is kept for the life of the store.
func (s *SessionStore) probeTTL() bool {
	if s.ttl == nil {
		return false
	}
	defer func() {
		// A panicking TTL map demotes the store to the plain map.
		recover()
	}()
	s.ttl.Put("__probe", 0, true)
	if _, ok := s.ttl.Get("__probe"); !ok {
		return false
	}
	s.ttl.Delete("__probe")
	return true
}

// Cache stores the serialized session under its token. A nil session
// clears the token instead, mirroring how a failed serialization
// removes the stale entry rather than caching garbage.
func (s *SessionStore) Cache(token string, session *AdminSession) {
	if token == "" {
		return
	}
	if session == nil {
		s.Clear(token)
		return
	}
	stored := *session
	stored.Token = token

	if s.useTTL {
		s.ttl.Put(token, 0, stored)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback[token] = stored
}

// Get returns the cached session for a token, nil when absent.
func (s *SessionStore) Get(token string) *AdminSession {
	if token == "" {
		return nil
	}
	if s.useTTL {
		value, ok := s.ttl.Get(token)
		if !ok {
			return nil
		}
		session, ok := value.(AdminSession)
		if !ok {
			s.ttl.Delete(token)
			return nil
		}
		return &session
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.fallback[token]; ok {
		return &session
	}
	return nil
}

// Clear removes a token. Idempotent.
func (s *SessionStore) Clear(token string) {
	if token == "" {
		return
	}
	if s.useTTL {
		s.ttl.Delete(token)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fallback, token)
}

// Require returns the session only when it exists and carries a
// non-empty identifier. A structurally invalid entry is cleared before
// returning, so the next attempt starts from a clean absent state.
// Callers translate the returned error into 401 + login redirect.
func (s *SessionStore) Require(token string) (*AdminSession, error) {
	session := s.Get(token)
	if session == nil {
		return nil, &ErrNoSession
	}
	if session.Identifier() == "" {
		s.Clear(token)
		return nil, &ErrSessionInvalid
	}
	return session, nil
}

// Count reports how many sessions are live.
func (s *SessionStore) Count() int {
	if s.useTTL {
		return s.ttl.Len()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fallback)
}

// AtCapacity reports whether the store reached the configured ceiling.
func (s *SessionStore) AtCapacity() bool {
	return s.Count() >= s.max
}

// Capacity returns the configured ceiling.
func (s *SessionStore) Capacity() int {
	return s.max
}

// UsingTTL reports which storage flavor the probe selected.
func (s *SessionStore) UsingTTL() bool {
	return s.useTTL
}

// Expiration returns the configured session lifetime.
func (s *SessionStore) Expiration() time.Duration {
	return s.exp
}
