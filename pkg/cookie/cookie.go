// Package cookie reads and writes cookies: plain, HMAC signed, AES-GCM
// encrypted, and the encrypted flash message queue shown after redirects.
//
// Signing and encryption need a secret of at least 32 bytes; separate keys
// are derived from it for each purpose.
package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Errors.
var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrDecrypt   = errors.New("cookie: decryption failed")
)

// MinSecretLength is the shortest accepted secret.
const MinSecretLength = 32

// FlashCookieName is the cookie holding the flash queue.
const FlashCookieName = "_flashes"

// Manager handles cookie operations.
type Manager struct {
	signKey  []byte
	encKey   []byte
	domain   string
	path     string
	sameSite http.SameSite
	secure   bool
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a Manager. Cookies default to path "/", HttpOnly and
// SameSite=Lax.
func New(opts ...Option) *Manager {
	m := &Manager{path: "/", sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret enables signing and encryption. Shorter secrets are ignored;
// use ValidateSecret to reject them at startup.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) < MinSecretLength {
			return
		}
		m.signKey = derive(secret, "cookie-sign")
		m.encKey = derive(secret, "cookie-encrypt")
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// ValidateSecret returns ErrBadSecret for secrets shorter than
// MinSecretLength.
func ValidateSecret(secret string) error {
	if len(secret) < MinSecretLength {
		return ErrBadSecret
	}
	return nil
}

func derive(secret, purpose string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie. A cookie of the same name already set on this
// response is replaced.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	m.write(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	})
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	m.Set(w, name, "", -1)
}

func (m *Manager) write(w http.ResponseWriter, c *http.Cookie) {
	h := w.Header()
	prefix := c.Name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	if v := c.String(); v != "" {
		h.Add("Set-Cookie", v)
	}
}

// GetSigned returns a signed cookie value after verifying its HMAC.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.signKey == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}
	if !hmac.Equal(sig, m.sign(name, value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// SetSigned sets a cookie whose value is readable but tamper-evident.
// The signature covers the cookie name, so values cannot be swapped
// between cookies.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.signKey == nil {
		return ErrNoSecret
	}
	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(m.sign(name, []byte(value)))
	m.Set(w, name, encoded, maxAge)
	return nil
}

func (m *Manager) sign(name string, value []byte) []byte {
	mac := hmac.New(sha256.New, m.signKey)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write(value)
	return mac.Sum(nil)
}

// GetEncrypted returns the plaintext of an encrypted cookie.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if m.encKey == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}
	plaintext, err := m.open(name, data)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// SetEncrypted sets a cookie whose value is hidden from the client.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.encKey == nil {
		return ErrNoSecret
	}
	sealed, err := m.seal(name, []byte(value))
	if err != nil {
		return err
	}
	m.Set(w, name, base64.RawURLEncoding.EncodeToString(sealed), maxAge)
	return nil
}

func (m *Manager) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(m.encKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts with AES-GCM using the cookie name as additional data.
func (m *Manager) seal(name string, plaintext []byte) ([]byte, error) {
	aead, err := m.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, []byte(name)), nil
}

func (m *Manager) open(name string, data []byte) ([]byte, error) {
	aead, err := m.aead()
	if err != nil {
		return nil, err
	}
	if len(data) < aead.NonceSize() {
		return nil, ErrDecrypt
	}
	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, []byte(name))
}

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// Flashes returns the queued flash messages and clears the queue.
// A missing or unreadable queue yields no messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw, err := m.GetEncrypted(r, FlashCookieName)
	if err != nil {
		return nil
	}
	m.Delete(w, FlashCookieName)

	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}

// SetFlashes replaces the queued flash messages for the next request.
func (m *Manager) SetFlashes(w http.ResponseWriter, flashes []Flash) error {
	if len(flashes) == 0 {
		m.Delete(w, FlashCookieName)
		return nil
	}
	data, err := json.Marshal(flashes)
	if err != nil {
		return err
	}
	return m.SetEncrypted(w, FlashCookieName, string(data), 0)
}
