package utils

import (
	"regexp"
	"strings"
)

var reNoSlug = regexp.MustCompile(`[\W_]+`)

// Slugify lowercases s and joins its word characters with dashes.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = reNoSlug.ReplaceAllLiteralString(s, " ")
	return strings.Join(strings.Fields(s), "-")
}
