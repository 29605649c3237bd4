package session

import "errors"

// Session errors.
var (
	ErrNotConfigured       = errors.New("session: not configured")
	ErrNotFound            = errors.New("session: not found")
	ErrExpired             = errors.New("session: expired")
	ErrFingerprintMismatch = errors.New("session: fingerprint mismatch")
)
