// Package session defines server-side sessions and their storage contract.
// The cookie holds only an opaque token; everything else lives in a Store.
package session

import (
	"errors"
	"time"
)

// Session is a server-side session.
type Session struct {
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time

	Values      map[string]any // arbitrary session data, JSON encoded at rest
	ID          string         // primary key
	Token       string         // cookie token, rotated on login
	IP          string
	UserAgent   string
	Fingerprint string // hash of client attributes, see SessionManager
	UserID      int64  // 0 for anonymous sessions
	Remember    bool   // long-lived "remember me" session

	dirty bool
	isNew bool
}

// New creates a session that has not been persisted yet.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated reports whether a user is logged into the session.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID > 0
}

// Login attaches a user to the session.
func (s *Session) Login(userID int64, remember bool) {
	s.UserID = userID
	s.Remember = remember
	s.dirty = true
}

// SetValue stores a value and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue returns a stored value.
func (s *Session) GetValue(key string) (any, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes a value, marking the session dirty if it existed.
func (s *Session) DeleteValue(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

func (s *Session) IsDirty() bool { return s.dirty }

func (s *Session) MarkDirty() { s.dirty = true }

func (s *Session) ClearDirty() { s.dirty = false }

func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) ClearNew() { s.isNew = false }

// IsExpired reports whether the session is past ExpiresAt.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value returns a typed session value.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}
	typed, ok := val.(T)
	if !ok {
		return zero, errors.New("session: type mismatch for key: " + key)
	}
	return typed, nil
}

// ValueOr returns a typed session value or def.
func ValueOr[T any](s *Session, key string, def T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return def
	}
	return val
}
