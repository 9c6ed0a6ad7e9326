package extractor

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinLength is the shortest normalized text kept as a chunk;
// shorter page text is usually a header or a page number.
const DefaultMinLength = 11

// Normalize collapses newlines into spaces and trims surrounding whitespace.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

func longEnough(text string, min int) bool {
	return utf8.RuneCountInString(text) >= min
}
