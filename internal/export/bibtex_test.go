package export

import (
	"strings"
	"testing"

	"github.com/paperhub/paperhub/internal/paper"
)

func TestToBibTeXArxivPaper(t *testing.T) {
	p := paper.Paper{
		ID:        7,
		ArxivID:   "1706.03762",
		Title:     "Attention Is All You Need",
		Authors:   []string{"Ashish Vaswani", "Noam Shazeer"},
		Abstract:  "The dominant sequence transduction models",
		Category:  "cs.CL",
		Published: "2017-06-12",
		PDFURL:    "https://arxiv.org/pdf/1706.03762",
	}

	got := ToBibTeX(p)

	if !strings.HasPrefix(got, "@misc{1706.03762,") {
		t.Errorf("entry should start with @misc{1706.03762, got:\n%s", got)
	}
	if !strings.Contains(got, "author = {Vaswani, Ashish and Shazeer, Noam}") {
		t.Errorf("missing formatted authors, got:\n%s", got)
	}
	if !strings.Contains(got, "title = {Attention Is All You Need}") {
		t.Errorf("missing title, got:\n%s", got)
	}
	if !strings.Contains(got, "year = {2017}") {
		t.Errorf("missing year, got:\n%s", got)
	}
	if !strings.Contains(got, "month = {6}") {
		t.Errorf("missing month, got:\n%s", got)
	}
	if !strings.Contains(got, "eprint = {1706.03762}") {
		t.Errorf("missing eprint, got:\n%s", got)
	}
	if !strings.Contains(got, "archivePrefix = {arXiv}") {
		t.Errorf("missing archivePrefix, got:\n%s", got)
	}
	if !strings.Contains(got, "primaryClass = {cs.CL}") {
		t.Errorf("missing primaryClass, got:\n%s", got)
	}
	if !strings.Contains(got, "url = {https://arxiv.org/pdf/1706.03762}") {
		t.Errorf("missing url, got:\n%s", got)
	}
	if !strings.Contains(got, "abstract = {The dominant sequence transduction models}") {
		t.Errorf("missing abstract, got:\n%s", got)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Errorf("entry should end with }, got:\n%s", got)
	}
}

func TestToBibTeXPlainPaper(t *testing.T) {
	p := paper.Paper{
		ID:        42,
		Title:     "Unindexed Manuscript",
		Authors:   []string{"Ada Lovelace"},
		Published: "1843",
	}

	got := ToBibTeX(p)

	if !strings.HasPrefix(got, "@article{paperhub-42,") {
		t.Errorf("entry should start with @article{paperhub-42, got:\n%s", got)
	}
	if strings.Contains(got, "eprint") || strings.Contains(got, "archivePrefix") {
		t.Errorf("plain paper should not carry arXiv fields, got:\n%s", got)
	}
	if !strings.Contains(got, "year = {1843}") {
		t.Errorf("missing year, got:\n%s", got)
	}
	if strings.Contains(got, "month = ") {
		t.Errorf("year-only date should not emit a month, got:\n%s", got)
	}
}

func TestToBibTeXOptionalFields(t *testing.T) {
	p := paper.Paper{ID: 1, Title: "Minimal"}

	got := ToBibTeX(p)

	for _, absent := range []string{"author = ", "year = ", "month = ", "url = ", "abstract = "} {
		if strings.Contains(got, absent) {
			t.Errorf("minimal paper should not include %q, got:\n%s", absent, got)
		}
	}
	if !strings.Contains(got, "title = {Minimal}") {
		t.Errorf("missing title, got:\n%s", got)
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"single author", []string{"John Smith"}, "Smith, John"},
		{"two authors", []string{"John Smith", "Jane Doe"}, "Smith, John and Doe, Jane"},
		{"middle name", []string{"John Q Public"}, "Public, John Q"},
		{"mononym", []string{"DeepMind"}, "DeepMind"},
		{"mixed", []string{"John Smith", "WHO"}, "Smith, John and WHO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors); got != tt.want {
				t.Errorf("formatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"100% effective", `100\% effective`},
		{"A & B", `A \& B`},
		{"$100 price", `\$100 price`},
		{"section #1", `section \#1`},
		{"under_score", `under\_score`},
		{"{braces}", `\{braces\}`},
		{"test~tilde", `test\textasciitilde{}tilde`},
		{"x^2", `x\textasciicircum{}2`},
		{"A & B: $100 for {item} #1", `A \& B: \$100 for \{item\} \#1`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeLatex(tt.input); got != tt.want {
				t.Errorf("escapeLatex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPublishedYearMonth(t *testing.T) {
	tests := []struct {
		published string
		year      string
		month     string
	}{
		{"2023-05-12", "2023", "5"},
		{"2023-11", "2023", "11"},
		{"2023", "2023", ""},
		{"", "", ""},
		{"May 2023", "", ""},
	}

	for _, tt := range tests {
		if got := publishedYear(tt.published); got != tt.year {
			t.Errorf("publishedYear(%q) = %q, want %q", tt.published, got, tt.year)
		}
		if got := publishedMonth(tt.published); got != tt.month {
			t.Errorf("publishedMonth(%q) = %q, want %q", tt.published, got, tt.month)
		}
	}
}

func TestToBibTeXList(t *testing.T) {
	papers := []paper.Paper{
		{ID: 1, ArxivID: "2301.00001", Title: "First"},
		{ID: 2, ArxivID: "2301.00002", Title: "Second"},
	}

	got := ToBibTeXList(papers)

	if !strings.Contains(got, "@misc{2301.00001,") || !strings.Contains(got, "@misc{2301.00002,") {
		t.Errorf("list should contain both entries, got:\n%s", got)
	}
	if parts := strings.Split(got, "@misc{"); len(parts) != 3 {
		t.Errorf("list should have 2 entries, got %d", len(parts)-1)
	}
}

func TestToBibTeXListEmpty(t *testing.T) {
	if got := ToBibTeXList(nil); got != "" {
		t.Errorf("ToBibTeXList(nil) = %q, want empty", got)
	}
}
