package main

import (
	"strings"
	"testing"
	"time"

	"github.com/paperhub/paperhub/internal/paper"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "short string unchanged",
			input:  "Attention Is All You Need",
			maxLen: 60,
			want:   "Attention Is All You Need",
		},
		{
			name:   "exact length unchanged",
			input:  "abcde",
			maxLen: 5,
			want:   "abcde",
		},
		{
			name:   "long string truncated with ellipsis",
			input:  "A Very Long Title That Goes On And On",
			maxLen: 20,
			want:   "A Very Long Title...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateString(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
			if len(got) > tt.maxLen {
				t.Errorf("result length %d exceeds maxLen %d", len(got), tt.maxLen)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		got := wrapText("short text", 60, "  ")
		if got != "short text" {
			t.Errorf("wrapText = %q, want unchanged", got)
		}
	})

	t.Run("long text wraps with indent", func(t *testing.T) {
		text := "one two three four five six seven eight nine ten"
		got := wrapText(text, 20, "    ")

		lines := strings.Split(got, "\n")
		if len(lines) < 2 {
			t.Fatalf("expected multiple lines, got %q", got)
		}
		for i, line := range lines[1:] {
			if !strings.HasPrefix(line, "    ") {
				t.Errorf("continuation line %d missing indent: %q", i+1, line)
			}
		}
		// No word is lost in wrapping.
		rejoined := strings.Join(strings.Fields(got), " ")
		if rejoined != text {
			t.Errorf("words changed by wrapping: %q", rejoined)
		}
	})

	t.Run("single overlong word kept whole", func(t *testing.T) {
		word := strings.Repeat("x", 40)
		got := wrapText(word+" tail", 20, "")
		if !strings.Contains(got, word) {
			t.Errorf("overlong word was split: %q", got)
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "0.5s"},
		{12 * time.Second, "12.0s"},
		{90 * time.Second, "1m 30s"},
		{10 * time.Minute, "10m 0s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPaperLine(t *testing.T) {
	p := &paper.Paper{
		ID:        42,
		ArxivID:   "1706.03762",
		Title:     "Attention Is All You Need",
		Authors:   []string{"Ashish Vaswani", "Noam Shazeer"},
		Category:  "cs.CL",
		Published: "2017-06-12",
	}

	line := paperLine(p)
	for _, want := range []string{"#42", "Attention Is All You Need", "[1706.03762]", "cs.CL", "2017-06-12"} {
		if !strings.Contains(line, want) {
			t.Errorf("paperLine missing %q in %q", want, line)
		}
	}
}

func TestPaperLineBareMetadata(t *testing.T) {
	p := &paper.Paper{ID: 7, Title: "Untitled Draft"}

	line := paperLine(p)
	if strings.Contains(line, "\n") {
		t.Errorf("paper without metadata should be a single line: %q", line)
	}
	if strings.Contains(line, "[") {
		t.Errorf("paper without arXiv id should have no bracket: %q", line)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"pdf-root", "pdf-root"},
		{"pdf_root", "pdf-root"},
		{"PDF_ROOT", "pdf-root"},
		{"OLLAMA_URL", "ollama-url"},
	}

	for _, tt := range tests {
		if got := normalizeKey(tt.input); got != tt.want {
			t.Errorf("normalizeKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDescribePaper(t *testing.T) {
	withID := &paper.Paper{ArxivID: "2301.00001", Title: "Some Title"}
	if got := describePaper(withID); got != "2301.00001" {
		t.Errorf("describePaper = %q, want arXiv id", got)
	}

	withoutID := &paper.Paper{Title: "A Paper Known Only By Its Title"}
	if got := describePaper(withoutID); !strings.Contains(got, "A Paper Known") {
		t.Errorf("describePaper = %q, want title prefix", got)
	}
}
