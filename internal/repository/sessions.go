package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/globomantics/cms/pkg/session"
)

// Sessions implements session.Store.
type Sessions struct {
	pool Pool
}

var _ session.Store = (*Sessions)(nil)

func (r *Sessions) Create(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s.Values)
	if err != nil {
		return fmt.Errorf("repository: encode session: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO sessions (id, token, user_id, remember, ip, user_agent, fingerprint, data, created_at, last_active_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Token, nullableID(s.UserID), s.Remember, s.IP, s.UserAgent, s.Fingerprint, data,
		s.CreatedAt, s.LastActiveAt, s.ExpiresAt,
	)
	return err
}

func (r *Sessions) Get(ctx context.Context, token string) (*session.Session, error) {
	var (
		s      session.Session
		userID *int64
		data   []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, token, user_id, remember, ip, user_agent, fingerprint, data, created_at, last_active_at, expires_at
		 FROM sessions WHERE token = $1`, token,
	).Scan(&s.ID, &s.Token, &userID, &s.Remember, &s.IP, &s.UserAgent, &s.Fingerprint, &data,
		&s.CreatedAt, &s.LastActiveAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if userID != nil {
		s.UserID = *userID
	}
	if err := json.Unmarshal(data, &s.Values); err != nil {
		return nil, fmt.Errorf("repository: decode session: %w", err)
	}
	if s.IsExpired() {
		return nil, session.ErrExpired
	}
	return &s, nil
}

func (r *Sessions) Update(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s.Values)
	if err != nil {
		return fmt.Errorf("repository: encode session: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET token = $2, user_id = $3, remember = $4, fingerprint = $5, data = $6,
		 last_active_at = now(), expires_at = $7 WHERE id = $1`,
		s.ID, s.Token, nullableID(s.UserID), s.Remember, s.Fingerprint, data, s.ExpiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (r *Sessions) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *Sessions) DeleteByUserID(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (r *Sessions) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
