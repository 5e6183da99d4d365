package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent decomposes characters and strips combining marks, so that
// "Señorita" slugs the same as "Senorita".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// MakeSlug derives a URL-safe identifier from a song's title and artist.
// The result is deterministic: case folded, diacritics transliterated,
// and every run of non-alphanumeric characters collapsed into a single
// dash. Collisions against existing documents are resolved by the caller.
func MakeSlug(title, artist string) string {
	return slugify(title + " " + artist)
}

func slugify(s string) string {
	if t, _, err := transform.String(deaccent, s); err == nil {
		s = t
	}
	s = strings.ToLower(s)
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "song"
	}
	return out
}
