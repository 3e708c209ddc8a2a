// Package checksum computes content digests used for optimistic
// concurrency on proof files and for skipping unchanged files during sync.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Match reports whether data hashes to want. An empty want matches
// anything, so callers may skip the precondition.
func Match(data []byte, want string) bool {
	return want == "" || Sum(data) == want
}
