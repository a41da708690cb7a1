package paper

import (
	"errors"
	"testing"

	"github.com/paperhub/paperhub/internal/vector"
)

func TestPaperValidate(t *testing.T) {
	tests := []struct {
		name    string
		paper   Paper
		wantErr error
	}{
		{
			name:  "minimal valid paper",
			paper: Paper{Title: "Attention Is All You Need"},
		},
		{
			name: "full paper",
			paper: Paper{
				Title:     "Attention Is All You Need",
				Authors:   []string{"Ashish Vaswani", "Noam Shazeer"},
				ArxivID:   "1706.03762",
				Category:  "cs.CL",
				Published: "2017-06-12",
			},
		},
		{
			name:  "year-only published",
			paper: Paper{Title: "x", Published: "2017"},
		},
		{
			name:  "year-month published",
			paper: Paper{Title: "x", Published: "2017-06"},
		},
		{
			name:    "missing title",
			paper:   Paper{Abstract: "some abstract"},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "malformed published date",
			paper:   Paper{Title: "x", Published: "June 2017"},
			wantErr: ErrBadPublished,
		},
		{
			name:    "published with time component",
			paper:   Paper{Title: "x", Published: "2017-06-12T00:00:00Z"},
			wantErr: ErrBadPublished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.paper.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadingEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   ReadingEntry
		wantErr error
	}{
		{name: "unrated", entry: ReadingEntry{PaperID: 1}},
		{name: "rated", entry: ReadingEntry{PaperID: 1, Rating: 5}},
		{name: "minimum rating", entry: ReadingEntry{PaperID: 1, Rating: 1}},
		{name: "rating too high", entry: ReadingEntry{PaperID: 1, Rating: 6}, wantErr: ErrBadRating},
		{name: "negative rating", entry: ReadingEntry{PaperID: 1, Rating: -1}, wantErr: ErrBadRating},
		{name: "missing paper id", entry: ReadingEntry{}, wantErr: ErrBadPaperID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHasVector(t *testing.T) {
	p := Paper{Title: "x"}
	if p.HasVector() {
		t.Error("paper without vector reports HasVector")
	}

	p.Vector = make(vector.Vector, vector.Dims)
	if !p.HasVector() {
		t.Error("paper with vector reports no vector")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "already clean", in: "deep learning", expected: "deep learning"},
		{name: "internal runs", in: "deep  \t learning\n\nmodels", expected: "deep learning models"},
		{name: "surrounding whitespace", in: "  title  ", expected: "title"},
		{name: "empty", in: "", expected: ""},
		{name: "only whitespace", in: " \n\t ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.expected {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name     string
		authors  []string
		max      int
		expected string
	}{
		{name: "empty", authors: nil, max: 3, expected: ""},
		{name: "under limit", authors: []string{"A. One", "B. Two"}, max: 3, expected: "A. One, B. Two"},
		{name: "at limit", authors: []string{"A", "B", "C"}, max: 3, expected: "A, B, C"},
		{name: "over limit", authors: []string{"A", "B", "C", "D"}, max: 3, expected: "A, B, C, et al."},
		{name: "no limit", authors: []string{"A", "B", "C", "D"}, max: 0, expected: "A, B, C, D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAuthors(tt.authors, tt.max); got != tt.expected {
				t.Errorf("FormatAuthors(%v, %d) = %q, want %q", tt.authors, tt.max, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		max      int
		expected string
	}{
		{name: "short enough", in: "short", max: 10, expected: "short"},
		{name: "breaks at word", in: "the quick brown fox", max: 12, expected: "the quick..."},
		{name: "single long word", in: "antidisestablishmentarianism", max: 10, expected: "antidisest..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.expected)
			}
		})
	}
}
