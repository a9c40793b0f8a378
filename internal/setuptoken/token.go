// Package setuptoken manages one-time account-setup tokens. The raw value is
// handed out exactly once at issuance; only its SHA-256 digest is persisted,
// so the store never holds anything a leaked dump could redeem.
package setuptoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

const rawValueBytes = 32

// Token is the persisted form of a setup capability.
type Token struct {
	Hash        string
	ApplicantID string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Consumed    bool
}

// Usable reports whether the token can still authorize an account creation.
func (t Token) Usable(now time.Time) bool {
	return !t.Consumed && now.Before(t.ExpiresAt)
}

// NewValue generates a raw token value with 256 bits of entropy.
func NewValue() (string, error) {
	buf := make([]byte, rawValueBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token value: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashValue returns the hex-encoded SHA-256 digest of a raw token value.
func HashValue(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
