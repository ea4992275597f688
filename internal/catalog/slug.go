package catalog

import "strings"

// Slugify derives a URL-safe identifier from a title: lower-cased, trimmed,
// whitespace runs become single hyphens, everything outside [a-z0-9_-] is
// dropped, repeated hyphens collapse, and leading/trailing hyphens are
// stripped. Uniqueness is NOT guaranteed here; see UniqueSlug.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastHyphen := false
	for _, r := range strings.TrimSpace(strings.ToLower(title)) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			lastHyphen = false
		default:
			// accented letters, punctuation etc. are dropped
		}
	}

	return strings.Trim(b.String(), "-")
}

// UniqueSlug derives a slug guaranteed unique per entity by suffixing the
// first 8 characters of its id. Two packages with identical titles under
// different destinations would otherwise collide.
func UniqueSlug(title, id string) string {
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	s := Slugify(title)
	if s == "" {
		return suffix
	}
	return s + "-" + suffix
}
