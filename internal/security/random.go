package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenKeyLength is the length of generated API token keys.
const TokenKeyLength = 40

// GenerateRandomString returns a hex string built from n random bytes.
func GenerateRandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("security: invalid random length %d", n)
	}
	buf := make([]byte, n)
	if _, errRead := rand.Read(buf); errRead != nil {
		return "", fmt.Errorf("security: read random: %w", errRead)
	}
	return hex.EncodeToString(buf), nil
}

// NewTokenKey returns a fresh opaque token key.
func NewTokenKey() (string, error) {
	return GenerateRandomString(TokenKeyLength / 2)
}
