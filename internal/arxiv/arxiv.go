// Package arxiv provides arXiv identifier parsing and taxonomy helpers.
// There is no network client here; papers arrive through manual adds and
// metadata file imports.
package arxiv

import (
	"regexp"
	"strings"
)

// Identifier forms: post-2007 "YYMM.NNNNN" and pre-2007 "archive/YYMMNNN",
// both with an optional version suffix.
var (
	newIDPattern = regexp.MustCompile(`^[0-9]{4}\.[0-9]{4,5}(v[0-9]+)?$`)
	oldIDPattern = regexp.MustCompile(`^[a-z-]+(\.[A-Z]{2})?/[0-9]{7}(v[0-9]+)?$`)

	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`arxiv\.org/abs/([0-9]{4}\.[0-9]{4,5}(?:v[0-9]+)?)`),
		regexp.MustCompile(`arxiv\.org/pdf/([0-9]{4}\.[0-9]{4,5}(?:v[0-9]+)?)`),
		regexp.MustCompile(`arxiv\.org/abs/([a-z-]+(?:\.[A-Z]{2})?/[0-9]{7}(?:v[0-9]+)?)`),
		regexp.MustCompile(`arxiv\.org/pdf/([a-z-]+(?:\.[A-Z]{2})?/[0-9]{7}(?:v[0-9]+)?)`),
	}

	// inTextPattern matches the "arXiv:ID" stamp printed on arXiv PDFs.
	inTextPattern = regexp.MustCompile(`(?i)arxiv:\s*([0-9]{4}\.[0-9]{4,5}(?:v[0-9]+)?)`)
)

// ExtractID pulls an arXiv identifier out of a URL or a bare identifier
// string. Returns "" when none is found.
func ExtractID(s string) string {
	s = strings.TrimSpace(s)
	if ValidID(s) {
		return s
	}
	for _, p := range urlPatterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// FindInText scans free text (typically extracted from a PDF) for an
// "arXiv:ID" stamp or an arxiv.org link. Returns "" when none is found.
func FindInText(text string) string {
	if m := inTextPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, p := range urlPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// ValidID reports whether s is a well-formed arXiv identifier in either form.
func ValidID(s string) bool {
	return newIDPattern.MatchString(s) || oldIDPattern.MatchString(s)
}

// categoryLabels covers the categories that show up in a typical ML/CS
// reading library. CategoryLabel echoes unknown codes back unchanged.
var categoryLabels = map[string]string{
	"cs.AI":    "Artificial Intelligence",
	"cs.CL":    "Computation and Language",
	"cs.CV":    "Computer Vision and Pattern Recognition",
	"cs.CR":    "Cryptography and Security",
	"cs.DB":    "Databases",
	"cs.DC":    "Distributed, Parallel, and Cluster Computing",
	"cs.IR":    "Information Retrieval",
	"cs.LG":    "Machine Learning",
	"cs.NE":    "Neural and Evolutionary Computing",
	"cs.RO":    "Robotics",
	"cs.SE":    "Software Engineering",
	"stat.ML":  "Machine Learning (Statistics)",
	"stat.ME":  "Methodology",
	"math.OC":  "Optimization and Control",
	"math.ST":  "Statistics Theory",
	"eess.IV":  "Image and Video Processing",
	"eess.AS":  "Audio and Speech Processing",
	"q-bio.PE": "Populations and Evolution",
	"q-bio.QM": "Quantitative Methods",
}

// CategoryLabel returns the human-readable name for a category code.
func CategoryLabel(code string) string {
	if label, ok := categoryLabels[code]; ok {
		return label
	}
	return code
}
