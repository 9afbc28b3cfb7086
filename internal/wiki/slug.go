package wiki

import (
	"strconv"
	"strings"
)

// Slugify derives a URL-safe slug from a page title: lower-cased, with
// every run of non-alphanumeric characters collapsed to a single
// hyphen. Returns "" for titles with no usable characters.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// UniqueSlug picks the first slug not present in taken: the base
// itself, then base-2, base-3, … deterministically.
func UniqueSlug(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}
