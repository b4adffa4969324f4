package utils

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w]+`)

// NormalizeSlug lowercases and trims s, collapses every run of non-word
// characters into a single hyphen and strips hyphens from both ends.
// "Home & Kitchen!" becomes "home-kitchen".
func NormalizeSlug(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonWord.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
