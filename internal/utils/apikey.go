// Package utils holds small helpers shared across the service.
package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewAPIKey generates an opaque operator credential: n random bytes
// hex-encoded, so the resulting string is 2n characters. The bytes
// come from crypto/rand; an error is returned rather than falling
// back to a weaker source.
func NewAPIKey(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
