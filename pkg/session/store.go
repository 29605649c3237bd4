package session

import "context"

// Store persists sessions.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get returns the session for a cookie token.
	// Returns ErrNotFound when absent and ErrExpired when past ExpiresAt.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves an existing session, including a rotated token.
	Update(ctx context.Context, s *Session) error

	// Delete removes a session by ID.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes every session of a user.
	DeleteByUserID(ctx context.Context, userID int64) error

	// DeleteExpired removes sessions past their expiry and returns how many.
	DeleteExpired(ctx context.Context) (int64, error)
}
