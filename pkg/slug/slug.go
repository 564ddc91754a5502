// Package slug builds URL path segments for catalogue facets.
package slug

import (
	gosimpleslug "github.com/gosimple/slug"
)

// Generate returns a lower-case, hyphen-separated slug for a collection,
// category or product name. Accented letters are transliterated and an
// ampersand becomes "and".
func Generate(name string) string {
	return gosimpleslug.Make(name)
}

// Matches reports whether candidate is the slug of name, so routes can accept
// either the display name or its slug.
func Matches(name, candidate string) bool {
	if name == candidate {
		return true
	}
	return Generate(name) == candidate
}
