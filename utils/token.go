package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewShareToken returns an unguessable share token. Tokens carry the
// full entropy of their random bytes and are never derived from file
// IDs or timestamps.
func NewShareToken() string {
	return randomHex(32)
}

// NewResetToken returns a single-use password reset token.
func NewResetToken() string {
	return randomHex(32)
}

// NewObjectName returns a storage object identifier.
func NewObjectName() string {
	return uuid.NewString()
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
