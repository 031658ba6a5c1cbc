// Package share mints and verifies the public access credentials that let an
// issued document be viewed without a session. Only a one-way digest of the
// token is ever stored.
package share

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/sha3"
)

// DefaultTTL bounds how long issued documents stay publicly reachable.
const DefaultTTL = 6 * 30 * 24 * time.Hour

const tokenBytes = 32

// Token pairs the plain credential (returned once to the caller, never
// stored) with the digest that is persisted.
type Token struct {
	Plain string
	Hash  string
}

// New mints a high-entropy token from the OS random source.
func New() (Token, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return Token{}, fmt.Errorf("read random: %w", err)
	}
	plain := base64.RawURLEncoding.EncodeToString(raw)
	return Token{Plain: plain, Hash: Hash(plain)}, nil
}

// Hash returns the hex SHA3-256 digest of a token. Deterministic, so stored
// digests can be looked up directly.
func Hash(plain string) string {
	sum := sha3.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Verify checks a presented token against the stored digest and expiry.
// Expired and mismatched tokens fail identically; callers must not reveal
// which property was wrong.
func Verify(presented, storedHash string, expiresAt, now time.Time) bool {
	if now.After(expiresAt) {
		return false
	}
	digest := Hash(presented)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedHash)) == 1
}
