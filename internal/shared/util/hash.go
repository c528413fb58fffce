package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the hex SHA-256 digest of raw file bytes. The digest is the
// content cache key: identical bytes always map to the same entry regardless
// of filename or uploader.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
