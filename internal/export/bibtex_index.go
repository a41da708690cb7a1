package export

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// BibTeXIndex indexes existing BibTeX entries so exports can append to a
// .bib file without duplicating papers already in it.
type BibTeXIndex struct {
	// Keys maps citation keys to true for existence checks.
	Keys map[string]bool
	// Eprints maps normalized arXiv eprint values to citation keys.
	Eprints map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys:    make(map[string]bool),
		Eprints: make(map[string]string),
	}
}

// HasEntry reports whether an entry already exists. The eprint is the
// primary match; the citation key is the fallback.
func (idx *BibTeXIndex) HasEntry(key, eprint string) bool {
	if eprint != "" {
		if _, exists := idx.Eprints[normalizeEprint(eprint)]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

var (
	// Matches an entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	// Matches an eprint field: eprint = {value} or eprint = "value"
	eprintFieldRegex = regexp.MustCompile(`(?i)^\s*eprint\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// ParseBibTeXFile builds an index from an existing .bib file. A missing
// file yields an empty index.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := eprintFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			eprint := normalizeEprint(matches[1])
			if eprint != "" && currentKey != "" {
				idx.Eprints[eprint] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// normalizeEprint normalizes an arXiv id for comparison. Version suffixes
// are dropped so 2301.12345v2 matches 2301.12345.
func normalizeEprint(eprint string) string {
	eprint = strings.TrimSpace(eprint)
	eprint = strings.TrimPrefix(eprint, "arXiv:")
	eprint = strings.TrimPrefix(eprint, "arxiv:")
	if i := strings.LastIndex(eprint, "v"); i > 0 && isDigits(eprint[i+1:]) {
		eprint = eprint[:i]
	}
	return strings.ToLower(eprint)
}

// AppendToBibFile appends BibTeX content to a file, creating it if needed.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString("\n" + content)
	return err
}
