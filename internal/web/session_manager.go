package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/globomantics/cms/pkg/id"
	"github.com/globomantics/cms/pkg/logger"
	"github.com/globomantics/cms/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "__sid"
	defaultSessionTTL        = 24 * time.Hour
	defaultRememberTTL       = 30 * 24 * time.Hour
	sessionTokenBytes        = 32
)

// FingerprintStrictness determines behavior on fingerprint mismatch.
type FingerprintStrictness int

const (
	// FingerprintDisabled skips fingerprint generation and validation.
	FingerprintDisabled FingerprintStrictness = iota
	// FingerprintWarn logs a mismatch but keeps the session.
	FingerprintWarn
	// FingerprintReject drops the session on mismatch.
	FingerprintReject
)

// SessionManager handles session lifecycle and the session cookie.
type SessionManager struct {
	store       session.Store
	logger      *slog.Logger
	cookieName  string
	domain      string
	ttl         time.Duration
	rememberTTL time.Duration
	sameSite    http.SameSite
	fingerprint FingerprintStrictness
	secure      bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a SessionManager backed by store.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:       store,
		logger:      logger.Discard(),
		cookieName:  defaultSessionCookieName,
		ttl:         defaultSessionTTL,
		rememberTTL: defaultRememberTTL,
		sameSite:    http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionTTL sets the lifetime of regular sessions (default 24h).
func WithSessionTTL(d time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if d > 0 {
			sm.ttl = d
		}
	}
}

// WithRememberTTL sets the lifetime of "remember me" sessions (default 30 days).
func WithRememberTTL(d time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if d > 0 {
			sm.rememberTTL = d
		}
	}
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

// WithSessionFingerprint enables client fingerprint checks.
func WithSessionFingerprint(strictness FingerprintStrictness) SessionOption {
	return func(sm *SessionManager) {
		sm.fingerprint = strictness
	}
}

// WithSessionLogger sets the logger for session events.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(sm *SessionManager) {
		if l != nil {
			sm.logger = l
		}
	}
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// TTL returns the lifetime of a session given its remember flag.
func (sm *SessionManager) TTL(remember bool) time.Duration {
	if remember {
		return sm.rememberTTL
	}
	return sm.ttl
}

// Load returns the session referenced by the request cookie.
// Missing, unknown and expired sessions all yield nil, nil.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	ck, err := r.Cookie(sm.cookieName)
	if err != nil || ck.Value == "" {
		return nil, nil
	}

	sess, err := sm.store.Get(ctx, ck.Value)
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if sm.fingerprint != FingerprintDisabled && sess.Fingerprint != "" && sess.Fingerprint != fingerprint(r) {
		sm.logger.WarnContext(ctx, "session fingerprint mismatch",
			slog.String("session_id", sess.ID),
			slog.String("ip", clientIP(r)),
		)
		if sm.fingerprint == FingerprintReject {
			return nil, session.ErrFingerprintMismatch
		}
	}

	return sess, nil
}

// Create stores a new anonymous session built from request metadata.
func (sm *SessionManager) Create(ctx context.Context, r *http.Request) (*session.Session, error) {
	sess := session.New(id.NewULID(), id.Token(sessionTokenBytes), time.Now().Add(sm.ttl))
	sess.IP = clientIP(r)
	sess.UserAgent = r.UserAgent()
	if sm.fingerprint != FingerprintDisabled {
		sess.Fingerprint = fingerprint(r)
	}

	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sess.ClearNew()
	sess.ClearDirty()
	return sess, nil
}

// Authenticate attaches userID to sess, sets its lifetime from the remember
// flag and rotates the token so a pre-login token cannot be reused.
func (sm *SessionManager) Authenticate(ctx context.Context, sess *session.Session, userID int64, remember bool) error {
	oldToken, oldExpiry := sess.Token, sess.ExpiresAt

	sess.Login(userID, remember)
	sess.Token = id.Token(sessionTokenBytes)
	sess.ExpiresAt = time.Now().Add(sm.TTL(remember))

	if err := sm.store.Update(ctx, sess); err != nil {
		sess.Token, sess.ExpiresAt = oldToken, oldExpiry
		return fmt.Errorf("authenticate session: %w", err)
	}
	sess.ClearDirty()
	return nil
}

// WriteCookie sets the session cookie, expiring together with the session.
func (sm *SessionManager) WriteCookie(w http.ResponseWriter, sess *session.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, sm.cookie(sess.Token, maxAge))
}

// ClearCookie removes the session cookie.
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, sm.cookie("", -1))
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     "/",
		Domain:   sm.domain,
		MaxAge:   maxAge,
		Secure:   sm.secure,
		HttpOnly: true,
		SameSite: sm.sameSite,
	}
}

// fingerprint hashes the stable client headers. The IP is left out so
// mobile clients switching networks keep their session.
func fingerprint(r *http.Request) string {
	h := sha256.New()
	h.Write([]byte(r.UserAgent()))
	h.Write([]byte{0})
	h.Write([]byte(r.Header.Get("Accept-Language")))
	return hex.EncodeToString(h.Sum(nil))
}

// clientIP returns the host part of RemoteAddr, which the RealIP
// middleware has already resolved from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
