package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/paperhub/paperhub/internal/paper"
)

// Output formatting constants.
const (
	DefaultListLimit = 50 // Default limit for list output

	ListTitleMaxLen   = 60 // Title truncation in list/result lines
	DetailTitleMaxLen = 70 // Title truncation in detail views

	TextWrapWidth       = 60 // Standard text wrap width
	DetailTextWrapWidth = 68 // Wider wrap for detail views
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that report status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// PaperRef identifies a paper in responses that reference one.
type PaperRef struct {
	ID      int64  `json:"id"`
	ArxivID string `json:"arxiv_id,omitempty"`
	Title   string `json:"title"`
}

func paperRef(p *paper.Paper) PaperRef {
	return PaperRef{ID: p.ID, ArxivID: p.ArxivID, Title: p.Title}
}

// printPapersHuman prints papers one per line with id, date, and authors.
func printPapersHuman(papers []paper.Paper) {
	for _, p := range papers {
		fmt.Println(paperLine(&p))
	}
}

// paperLine formats a one-line summary of a paper.
func paperLine(p *paper.Paper) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%-5d %s", p.ID, truncateString(p.Title, ListTitleMaxLen))
	if p.ArxivID != "" {
		fmt.Fprintf(&sb, "  [%s]", p.ArxivID)
	}
	var meta []string
	if len(p.Authors) > 0 {
		meta = append(meta, paper.FormatAuthors(p.Authors, 3))
	}
	if p.Category != "" {
		meta = append(meta, p.Category)
	}
	if p.Published != "" {
		meta = append(meta, p.Published)
	}
	if len(meta) > 0 {
		fmt.Fprintf(&sb, "\n       %s", strings.Join(meta, " · "))
	}
	return sb.String()
}

// printMatchesHuman prints ranked similarity results.
func printMatchesHuman(matches []paper.Match) {
	for i, m := range matches {
		fmt.Printf("%d. [%.3f] #%d %s\n", i+1, m.Similarity, m.Paper.ID, truncateString(m.Paper.Title, ListTitleMaxLen))
		var meta []string
		if len(m.Paper.Authors) > 0 {
			meta = append(meta, paper.FormatAuthors(m.Paper.Authors, 3))
		}
		if m.Paper.ArxivID != "" {
			meta = append(meta, m.Paper.ArxivID)
		}
		if m.Paper.Published != "" {
			meta = append(meta, m.Paper.Published)
		}
		if len(meta) > 0 {
			fmt.Printf("   %s\n", strings.Join(meta, " · "))
		}
		fmt.Println()
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// wrapText wraps text to the specified width with indentation on
// subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// printProgress prints a progress bar to stderr.
func printProgress(current, total int) {
	if total == 0 {
		return
	}
	pct := float64(current) / float64(total) * 100
	barWidth := 30
	filled := int(float64(barWidth) * float64(current) / float64(total))
	bar := ""
	for i := 0; i < barWidth; i++ {
		if i < filled {
			bar += "="
		} else if i == filled {
			bar += ">"
		} else {
			bar += " "
		}
	}
	fmt.Fprintf(os.Stderr, "\r[%s] %d/%d (%.0f%%)", bar, current, total, pct)
}

// clearProgress wipes the progress line.
func clearProgress() {
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", 50))
}
