package paper

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs to single spaces and trims the ends.
// Applied to titles and abstracts at intake so stored text is search-friendly.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// FormatAuthors renders an author list for display, abbreviating with
// "et al." past maxDisplay names.
func FormatAuthors(authors []string, maxDisplay int) string {
	if len(authors) == 0 {
		return ""
	}
	if maxDisplay <= 0 || len(authors) <= maxDisplay {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:maxDisplay], ", ") + ", et al."
}

// Truncate shortens s to at most maxLen runes, breaking at a word boundary
// where possible and appending an ellipsis.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	cut := string(runes[:maxLen])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
