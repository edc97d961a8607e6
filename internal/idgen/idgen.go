// Package idgen generates opaque identifiers for thoughts and background
// tasks, following the generateID() helper duplicated in
// pkg/chat/service.go and pkg/memory/extractor.go (8 random bytes, hex
// encoded), widened to 16 bytes for a 128-bit identifier.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

// New returns a random 128-bit identifier as a lowercase hex string.
func New() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is broken.
		panic("idgen: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}
