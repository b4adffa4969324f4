package utils

import (
	"regexp"
	"strings"
)

var nonSKUChars = regexp.MustCompile(`[^A-Z0-9]+`)

// SKUStem returns the uppercased first word of name and the cleaned model
// code, e.g. ("Desk lamp", "l-200") -> ("DESK", "L200").
func SKUStem(name, modelCode string) (word, model string) {
	fields := strings.Fields(name)
	if len(fields) > 0 {
		word = nonSKUChars.ReplaceAllString(strings.ToUpper(fields[0]), "")
	}
	if word == "" {
		word = "ITEM"
	}
	model = nonSKUChars.ReplaceAllString(strings.ToUpper(modelCode), "")
	return word, model
}
