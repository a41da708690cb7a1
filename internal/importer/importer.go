// Package importer parses paper metadata files for bulk import.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paperhub/paperhub/internal/arxiv"
	"github.com/paperhub/paperhub/internal/paper"
)

// FlexibleString handles JSON fields that may be a string, a number, or
// null. Metadata dumps are inconsistent about how they encode years.
type FlexibleString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = FlexibleString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got: %s", s)
	}
	*f = FlexibleString(num.String())
	return nil
}

// String returns the underlying string value.
func (f FlexibleString) String() string {
	return string(f)
}

// FlexibleAuthors handles author fields that may be a JSON array of names
// or a single delimited string ("A. Smith, B. Jones" or "A. Smith and
// B. Jones").
type FlexibleAuthors []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleAuthors) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = nil
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*f = cleanNames(list)
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("expected string or array of strings, got: %s", s)
	}
	*f = SplitAuthorList(one)
	return nil
}

// SplitAuthorList breaks a single author string on the usual delimiters
// (";", " and ", ",") and trims the pieces.
func SplitAuthorList(s string) []string {
	for _, sep := range []string{";", " and "} {
		if strings.Contains(s, sep) {
			return cleanNames(strings.Split(s, sep))
		}
	}
	if strings.Contains(s, ",") {
		return cleanNames(strings.Split(s, ","))
	}
	return cleanNames([]string{s})
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// entry mirrors one object in an import file.
type entry struct {
	ArxivID   string          `json:"arxiv_id"`
	Title     string          `json:"title"`
	Authors   FlexibleAuthors `json:"authors"`
	Abstract  string          `json:"abstract"`
	Category  string          `json:"category"`
	Published FlexibleString  `json:"published"`
	PDFURL    string          `json:"pdf_url"`
	PDFPath   string          `json:"pdf_path"`
}

// ParsePapers parses paper metadata objects from a JSON array or from JSON
// Lines (the form 'paperhub export --format jsonl' writes). Valid entries
// are returned even when others fail; one error is collected per bad entry
// so a single malformed record does not abort a bulk import.
func ParsePapers(data []byte) ([]paper.Paper, []error) {
	entries, err := decodeEntries(data)
	if err != nil {
		return nil, []error{fmt.Errorf("parsing import file: %w", err)}
	}

	var papers []paper.Paper
	var errs []error
	for i, e := range entries {
		p, err := e.toPaper()
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i, e.describe(), err))
			continue
		}
		papers = append(papers, p)
	}
	return papers, errs
}

// decodeEntries picks the container format by the first byte: '[' means one
// JSON array, anything else is treated as a stream of objects.
func decodeEntries(data []byte) ([]entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var entries []entry
	for dec.More() {
		var e entry
		if err := dec.Decode(&e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (e entry) toPaper() (paper.Paper, error) {
	p := paper.Paper{
		ArxivID:   strings.TrimSpace(e.ArxivID),
		Title:     paper.CleanText(e.Title),
		Authors:   e.Authors,
		Abstract:  paper.CleanText(e.Abstract),
		Category:  strings.TrimSpace(e.Category),
		Published: strings.TrimSpace(e.Published.String()),
		PDFURL:    strings.TrimSpace(e.PDFURL),
		PDFPath:   strings.TrimSpace(e.PDFPath),
	}

	// The arxiv_id field wins, but a recognizable id embedded in the PDF
	// URL fills the gap when the field is absent.
	if p.ArxivID == "" && p.PDFURL != "" {
		p.ArxivID = arxiv.ExtractID(p.PDFURL)
	}
	if p.ArxivID != "" && !arxiv.ValidID(p.ArxivID) {
		if extracted := arxiv.ExtractID(p.ArxivID); extracted != "" {
			p.ArxivID = extracted
		} else {
			return paper.Paper{}, fmt.Errorf("invalid arxiv id %q", p.ArxivID)
		}
	}

	if err := p.Validate(); err != nil {
		return paper.Paper{}, err
	}
	return p, nil
}

// describe identifies an entry in error messages without assuming which
// fields are present.
func (e entry) describe() string {
	if e.ArxivID != "" {
		return e.ArxivID
	}
	if e.Title != "" {
		return paper.Truncate(e.Title, 40)
	}
	return "untitled"
}
