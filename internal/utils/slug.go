package utils

import (
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// DeriveSlug builds a URL slug from an event title plus a short random
// suffix so two events with the same title never collide. Called at
// construction and whenever the title changes; there is no hidden
// lifecycle hook.
func DeriveSlug(title string) string {
	base := slugify(title)
	id := uuid.New()
	suffix := hex.EncodeToString(id[:3])
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func slugify(s string) string {
	var b strings.Builder
	prevDash := true // trim leading dashes
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		case !prevDash:
			b.WriteRune('-')
			prevDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
