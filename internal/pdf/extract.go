// Package pdf pulls identifying metadata out of paper PDFs and opens them
// in a configured viewer.
package pdf

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/paperhub/paperhub/internal/arxiv"
	"github.com/paperhub/paperhub/internal/paper"
)

// metadataPages bounds identifier scans. arXiv stamps and DOIs sit on the
// first page of nearly every paper; three pages covers cover sheets.
const metadataPages = 3

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// ExtractArxivID scans the first pages of a PDF for an arXiv stamp or an
// arxiv.org link. Returns "" without error when none is found.
func ExtractArxivID(filePath string) (string, error) {
	text, err := ExtractText(filePath, metadataPages)
	if err != nil {
		return "", err
	}
	return arxiv.FindInText(text), nil
}

// ExtractDOI scans the first pages of a PDF for a DOI. Returns "" without
// error when none is found.
func ExtractDOI(filePath string) (string, error) {
	text, err := ExtractText(filePath, metadataPages)
	if err != nil {
		return "", err
	}
	return findDOI(text), nil
}

// ExtractTitle guesses the title of a PDF from its first page. The largest
// font on the page is taken to be the title face; everything set in it is
// joined in content order. Best effort: "" when the guess looks wrong.
func ExtractTitle(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return "", nil
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return "", nil
	}

	return titleFromTexts(page.Content().Text), nil
}

// titleFromTexts implements the largest-font heuristic over positioned
// text fragments.
func titleFromTexts(texts []pdf.Text) string {
	var maxSize float64
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if t.FontSize > maxSize {
			maxSize = t.FontSize
		}
	}
	if maxSize == 0 {
		return ""
	}

	var sb strings.Builder
	for _, t := range texts {
		if t.FontSize >= maxSize-0.1 {
			sb.WriteString(t.S)
		}
	}

	title := paper.CleanText(sb.String())
	if len(title) < 8 || len(title) > 300 || looksLikeHeader(title) {
		return ""
	}
	return title
}

// ExtractText extracts plain text from the first N pages of a PDF. A
// maxPages of 0 reads the whole document.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var sb strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// findDOI returns the first valid DOI in text, with trailing punctuation
// stripped.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// looksLikeHeader rejects title guesses that are really running heads or
// arXiv stamps.
func looksLikeHeader(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "arxiv:") {
		return true
	}
	if strings.Contains(lower, "journal") || strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	return false
}
