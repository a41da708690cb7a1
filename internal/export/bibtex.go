// Package export renders library papers as BibTeX and JSONL.
package export

import (
	"fmt"
	"strings"

	"github.com/paperhub/paperhub/internal/paper"
)

// ToBibTeX converts a paper to a BibTeX entry. Papers with an arXiv id
// become @misc entries carrying eprint/archivePrefix/primaryClass, matching
// how arXiv itself exports citations; everything else is an @article.
func ToBibTeX(p paper.Paper) string {
	var fields []string

	if len(p.Authors) > 0 {
		fields = append(fields, fmt.Sprintf("  author = {%s}", formatAuthors(p.Authors)))
	}
	if p.Title != "" {
		fields = append(fields, fmt.Sprintf("  title = {%s}", escapeLatex(p.Title)))
	}
	if year := publishedYear(p.Published); year != "" {
		fields = append(fields, fmt.Sprintf("  year = {%s}", year))
	}
	if month := publishedMonth(p.Published); month != "" {
		fields = append(fields, fmt.Sprintf("  month = {%s}", month))
	}
	if p.ArxivID != "" {
		fields = append(fields, fmt.Sprintf("  eprint = {%s}", p.ArxivID))
		fields = append(fields, "  archivePrefix = {arXiv}")
		if p.Category != "" {
			fields = append(fields, fmt.Sprintf("  primaryClass = {%s}", p.Category))
		}
	}
	if p.PDFURL != "" {
		fields = append(fields, fmt.Sprintf("  url = {%s}", p.PDFURL))
	}
	if p.Abstract != "" {
		fields = append(fields, fmt.Sprintf("  abstract = {%s}", escapeLatex(p.Abstract)))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("@%s{%s,\n", entryType(p), CitationKey(p)))
	sb.WriteString(strings.Join(fields, ",\n"))
	sb.WriteString("\n}\n")
	return sb.String()
}

// ToBibTeXList converts papers to a BibTeX document, one entry per paper.
func ToBibTeXList(papers []paper.Paper) string {
	entries := make([]string, 0, len(papers))
	for _, p := range papers {
		entries = append(entries, ToBibTeX(p))
	}
	return strings.Join(entries, "\n")
}

// CitationKey returns the BibTeX key for a paper: the arXiv id when one
// exists, otherwise a key derived from the database id.
func CitationKey(p paper.Paper) string {
	if p.ArxivID != "" {
		return p.ArxivID
	}
	return fmt.Sprintf("paperhub-%d", p.ID)
}

func entryType(p paper.Paper) string {
	if p.ArxivID != "" {
		return "misc"
	}
	return "article"
}

// formatAuthors renders authors in BibTeX "Last, First and Last, First"
// form. Names are stored flat, so the final token is taken as the surname;
// single-token names (collaborations, mononyms) pass through unchanged.
func formatAuthors(authors []string) string {
	parts := make([]string, 0, len(authors))
	for _, name := range authors {
		tokens := strings.Fields(name)
		if len(tokens) < 2 {
			parts = append(parts, escapeLatex(name))
			continue
		}
		last := tokens[len(tokens)-1]
		first := strings.Join(tokens[:len(tokens)-1], " ")
		parts = append(parts, escapeLatex(last)+", "+escapeLatex(first))
	}
	return strings.Join(parts, " and ")
}

// publishedYear extracts the year from a published date of the form
// "YYYY-MM-DD", "YYYY-MM", or "YYYY".
func publishedYear(published string) string {
	if len(published) >= 4 && isDigits(published[:4]) {
		return published[:4]
	}
	return ""
}

// publishedMonth extracts the month, without a leading zero.
func publishedMonth(published string) string {
	if len(published) < 7 || published[4] != '-' || !isDigits(published[5:7]) {
		return ""
	}
	month := strings.TrimPrefix(published[5:7], "0")
	if month == "" {
		return ""
	}
	return month
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

var latexReplacer = strings.NewReplacer(
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// escapeLatex escapes LaTeX special characters in field values.
func escapeLatex(s string) string {
	return latexReplacer.Replace(s)
}
