package backoff

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Jitter derives a reproducible pseudo-random delay fraction from a key and
// attempt number. The same inputs always yield the same value, which keeps
// retry timing testable while still spreading out concurrent retries.
func Jitter(key string, attempt int, scale float64) float64 {
	if scale <= 0 {
		return 0
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", key, attempt)))
	deviate := float64(binary.BigEndian.Uint64(sum[:8])) / float64(1<<63) / 2

	return deviate * scale
}
