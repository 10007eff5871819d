package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ArticleID returns the lowercase hex sha256 of the trimmed URL.
func ArticleID(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return hex.EncodeToString(sum[:])
}
