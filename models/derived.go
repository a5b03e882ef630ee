package models

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// WordsPerMinute is the reading speed used for ReadingTime.
	WordsPerMinute = 200

	// MetaDescriptionMaxLength is the search-engine limit for meta descriptions.
	MetaDescriptionMaxLength = 160
)

var (
	wordPattern    = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// WordCount counts runs of letters, digits and underscores.
func WordCount(text string) int {
	return len(wordPattern.FindAllStringIndex(text, -1))
}

// ReadingTime returns the estimated minutes needed to read text, rounded to the
// nearest minute (halves round up) and never less than 1.
func ReadingTime(text string) int {
	minutes := int(math.Round(float64(WordCount(text)) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Slugify lowercases s, strips accents and collapses every run of other
// characters into a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	slug := nonSlugPattern.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// DefaultMetaDescription returns the first MetaDescriptionMaxLength runes of excerpt, untrimmed
// and without an ellipsis.
func DefaultMetaDescription(excerpt string) string {
	r := []rune(excerpt)
	if len(r) <= MetaDescriptionMaxLength {
		return excerpt
	}
	return string(r[:MetaDescriptionMaxLength])
}
