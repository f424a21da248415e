package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Scopes understood by the router.
const (
	ScopeAnalyze = "analyze"
	ScopeAdmin   = "admin"
)

const (
	rawKeyPrefix = "flk_"
	keyPrefixLen = 8
)

// KeyPrefix returns the lookup prefix stored alongside a key's hash, or ""
// when raw is too short to be a key.
func KeyPrefix(raw string) string {
	if len(raw) < keyPrefixLen {
		return ""
	}
	return raw[:keyPrefixLen]
}

// HashKey returns the bcrypt hash stored for raw.
func HashKey(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(h), nil
}

// VerifyKey reports whether raw matches a stored bcrypt hash.
func VerifyKey(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// GenerateKey returns a new random raw API key. The raw value is shown to the
// caller once and never stored.
func GenerateKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return rawKeyPrefix + hex.EncodeToString(buf), nil
}
