package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTerm composes accents (NFC), lower-cases and trims a search term so
// that "Síndrome" typed with a combining accent matches the catalog spelling.
func NormalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// WordCount counts whitespace-separated words the way the extractor measures candidates.
// An empty string counts as one word.
func WordCount(s string) int {
	n := len(strings.Fields(s))
	if n == 0 {
		return 1
	}
	return n
}
