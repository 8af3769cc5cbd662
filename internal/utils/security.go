package contextutils

import (
	"strings"
)

// MaskSecret masks a bearer token or project API key for logging.
// Only the first and last four characters survive; short values are fully masked.
func MaskSecret(secret string) string {
	if secret == "" {
		return "[EMPTY]"
	}

	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}

	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
