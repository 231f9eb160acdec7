// Package fileid derives stable keys for inbox files: one from the path, one from the content.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const (
	pathPrefix    = "file:"
	contentPrefix = "sha256:"
)

// PathKey returns a stable key for the given path. Equivalent spellings of
// the same path yield the same key.
func PathKey(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return pathPrefix + hex.EncodeToString(hash[:])
}

// ContentID returns the SHA-256 digest of content. Files with the same bytes
// share an ID regardless of name or modification time.
func ContentID(content []byte) string {
	hash := sha256.Sum256(content)
	return contentPrefix + hex.EncodeToString(hash[:])
}
