// Package id generates identifiers used across the application:
// sortable ULIDs for storage keys, UUIDs for request correlation and
// short url-safe tokens for slug suffixes and secrets.
package id

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// Crockford's Base32 alphabet (excludes I, L, O, U).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID returns a 26-character ULID: 48 bits of millisecond timestamp
// followed by 80 random bits, both Crockford Base32 encoded.
// ULIDs sort lexicographically by creation time.
func NewULID() string {
	var raw [16]byte
	binary.BigEndian.PutUint64(raw[:8], uint64(time.Now().UnixMilli())<<16)
	if _, err := rand.Read(raw[6:]); err != nil {
		binary.BigEndian.PutUint64(raw[8:], uint64(time.Now().UnixNano()))
	}

	// 128 bits are emitted as 26 groups of 5 bits, the first group padded
	// with two leading zero bits.
	var out [26]byte
	var acc uint64
	bits, pos := uint(2), 0
	for _, b := range raw {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = crockfordBase32[(acc>>bits)&0x1F]
			pos++
		}
	}
	return string(out[:])
}

// NewRequestID returns a random UUIDv4 string.
func NewRequestID() string {
	return uuid.NewString()
}

// Token returns a url-safe random token built from n random bytes.
// The result has ceil(4n/3) characters and no padding.
func Token(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		var seed [8]byte
		binary.BigEndian.PutUint64(seed[:], uint64(time.Now().UnixNano()))
		copy(b, seed[:])
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
