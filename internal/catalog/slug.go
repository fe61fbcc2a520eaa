package catalog

import (
	"regexp"
	"strings"
)

var slugRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slugify lower-cases s and joins letter/digit runs with dashes
func Slugify(s string) string {
	return slugify(s)
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
