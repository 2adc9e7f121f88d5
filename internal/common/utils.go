package common

import (
	"regexp"
	"strings"
	"unicode"
)

// fieldChars keeps letters from any script, closing quotes (Martha’s Vineyard),
// apostrophes, dashes (Winston-Salem) and spaces.
var fieldChars = regexp.MustCompile(`[\p{Pf}\p{L}'\- ]`)

// CleanField strips every character of s that cannot appear in a place name.
func CleanField(s string) string {
	return strings.TrimSpace(strings.Join(fieldChars.FindAllString(strings.TrimSpace(s), -1), ""))
}

// CapWords upper-cases the first letter of each space separated word and
// lower-cases the rest, collapsing runs of whitespace.
func CapWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
