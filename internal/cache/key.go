package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// maxKeyLen keeps a key plus the ".cache" suffix inside a single path
// component on common filesystems.
const maxKeyLen = 200

// fileSuffix is appended to a key to form its file name.
const fileSuffix = ".cache"

// Key derives a storage key from a URL by dropping every character that is
// not an ASCII letter, digit, '-', '_' or '.'. Overlong keys keep a prefix
// and gain the SHA-1 of the full URL so they stay deterministic.
func Key(rawURL string) string {
	var b strings.Builder
	b.Grow(len(rawURL))
	for i := 0; i < len(rawURL); i++ {
		c := rawURL[i]
		if keepByte(c) {
			b.WriteByte(c)
		}
	}

	key := b.String()
	if len(key) <= maxKeyLen {
		return key
	}

	sum := sha1.Sum([]byte(rawURL))
	digest := hex.EncodeToString(sum[:])
	return key[:maxKeyLen-len(digest)-1] + "-" + digest
}

// FileName returns the on-disk file name for a key.
func FileName(key string) string {
	return key + fileSuffix
}

func keepByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c == '.':
		return true
	}
	return false
}
