// Package util provides content hashing, word counting and slug helpers.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// WordCount counts whitespace-separated words in an HTML body. Tags count
// as part of adjacent words, matching how reading time was estimated by
// the dashboard this feeds.
func WordCount(content string) int {
	return len(strings.Fields(content))
}
