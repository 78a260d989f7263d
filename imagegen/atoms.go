// atoms.go contains pure helper functions with no dependencies.
package imagegen

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
)

// maxRandomSeed keeps generated seeds below ten digits so they stay
// short enough to read and retype.
const maxRandomSeed = 1_000_000_000

// RandomSeed generates a random non-negative seed below maxRandomSeed.
// Uses crypto/rand so concurrent calls need no shared state.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively impossible; a fixed seed
		// beats panicking in a preview tool
		return 42
	}

	return int64(binary.LittleEndian.Uint64(buf[:]) % maxRandomSeed)
}

// truncateText shortens text to at most max runes for log output,
// appending "..." when truncated.
func truncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// isImageContentType reports whether a Content-Type header value denotes
// an image, ignoring parameters and case.
func isImageContentType(contentType string) bool {
	lower := strings.ToLower(contentType)
	if idx := strings.Index(lower, ";"); idx != -1 {
		lower = lower[:idx]
	}
	return strings.HasPrefix(strings.TrimSpace(lower), "image/")
}
