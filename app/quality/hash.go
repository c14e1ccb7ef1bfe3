package quality

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ContentHash generates the identity digest for a piece of collected content.
// The same (url, title, content) triple always yields the same 64-hex-char
// digest; it backs both store identity and duplicate detection.
func ContentHash(url, title, content string) string {
	data := fmt.Sprintf("%s|%s|%s", url, title, content)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
