package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 24-character hex ID, used for request correlation.
// Reading ids are UUIDs and are generated elsewhere.
func NewID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
