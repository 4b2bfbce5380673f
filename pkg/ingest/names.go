package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

// scientificNamePatterns are tried in order; the first match that survives
// validation wins. The bare binomial fallback at the end is a known source
// of false positives (it will happily match a person's name) but scraped
// species pages rarely contain one before the actual binomial.
var scientificNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:nombre\s+científico[:\s]+)([A-Z][a-z]+\s+[a-z]+)`),
	regexp.MustCompile(`(?i:scientific\s+name[:\s]+)([A-Z][a-z]+\s+[a-z]+)`),
	regexp.MustCompile(`\(([A-Z][a-z]+\s+[a-z]+)\)`),
	regexp.MustCompile(`\b([A-Z][a-z]+\s+[a-z]+)\b`),
}

// ScientificName recovers a binomial species name from page text, or
// returns "" when no pattern yields a valid candidate.
func ScientificName(text string) string {
	for _, pattern := range scientificNamePatterns {
		match := pattern.FindStringSubmatch(text)
		if len(match) < 2 {
			continue
		}
		if name := strings.TrimSpace(match[1]); validBinomial(name) {
			return name
		}
	}
	return ""
}

// validBinomial accepts exactly two tokens with a capitalized genus.
func validBinomial(name string) bool {
	parts := strings.Fields(name)
	if len(parts) != 2 {
		return false
	}
	first := []rune(parts[0])
	return len(first) > 0 && unicode.IsUpper(first[0])
}
