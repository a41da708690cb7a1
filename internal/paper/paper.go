// Package paper defines the core domain types for the paper library.
package paper

import (
	"errors"
	"time"

	"github.com/paperhub/paperhub/internal/vector"
)

// DefaultUser is the user id recorded when no explicit user is given.
// The library is single-user by default; the id stays an opaque string so
// multiple readers can share one library.
const DefaultUser = "default_user"

// PublishedLayout is the full date layout for Paper.Published. Year-only
// and year-month values are also accepted; metadata sources rarely agree
// on date granularity.
const PublishedLayout = "2006-01-02"

var publishedLayouts = []string{PublishedLayout, "2006-01", "2006"}

// Paper represents one academic paper in the library.
type Paper struct {
	// Identity
	ID      int64  `json:"id"`                 // Store-assigned, stable
	ArxivID string `json:"arxiv_id,omitempty"` // Unique when present

	// Metadata
	Title     string   `json:"title"`
	Authors   []string `json:"authors,omitempty"`
	Abstract  string   `json:"abstract,omitempty"`
	Category  string   `json:"category,omitempty"`  // arXiv taxonomy code, e.g. cs.LG
	Published string   `json:"published,omitempty"` // YYYY-MM-DD, empty if unknown

	// File locations
	PDFURL  string `json:"pdf_url,omitempty"`  // External link
	PDFPath string `json:"pdf_path,omitempty"` // Local file, relative to configured PDF root

	// Embedding state. The raw vector never appears in JSON output; its
	// presence is visible through VectorModel.
	Vector      vector.Vector `json:"-"`
	VectorModel string        `json:"vector_model,omitempty"` // Model the vector was produced by
	VectorHash  string        `json:"-"`                      // sha256 of the embedded text
	EmbeddedAt  time.Time     `json:"embedded_at,omitzero"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validation errors.
var (
	ErrEmptyTitle   = errors.New("title is required")
	ErrBadPublished = errors.New("published date must be YYYY-MM-DD, YYYY-MM, or YYYY")
	ErrEmptyTagName = errors.New("tag name is required")
	ErrBadRating    = errors.New("rating must be between 1 and 5")
	ErrBadPaperID   = errors.New("paper id must be positive")
)

// Validate checks a paper for storage.
func (p *Paper) Validate() error {
	if p.Title == "" {
		return ErrEmptyTitle
	}
	if p.Published != "" && !validPublished(p.Published) {
		return ErrBadPublished
	}
	return nil
}

func validPublished(s string) bool {
	for _, layout := range publishedLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// HasVector reports whether the paper currently carries an embedding vector.
func (p *Paper) HasVector() bool {
	return len(p.Vector) > 0
}

// Tag is a user-defined label papers can carry.
type Tag struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// PaperCount is populated by listing queries only.
	PaperCount int `json:"paper_count,omitempty"`
}

// Validate checks a tag for storage.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return ErrEmptyTagName
	}
	return nil
}

// Match pairs a paper with its similarity to some query vector.
// Similarity is 1 minus cosine distance, in [-1, 1].
type Match struct {
	Paper      Paper   `json:"paper"`
	Similarity float64 `json:"similarity"`
}

// ReadingEntry records one read event. A user may read the same paper many
// times; every read is its own entry.
type ReadingEntry struct {
	ID      int64     `json:"id"`
	PaperID int64     `json:"paper_id"`
	UserID  string    `json:"user_id"`
	ReadAt  time.Time `json:"read_at"`
	Rating  int       `json:"rating,omitempty"` // 1-5, 0 when unrated
	Notes   string    `json:"notes,omitempty"`

	// PaperTitle is populated by history listing queries only.
	PaperTitle string `json:"paper_title,omitempty"`
}

// Validate checks a reading entry for storage.
func (e *ReadingEntry) Validate() error {
	if e.PaperID <= 0 {
		return ErrBadPaperID
	}
	if e.Rating != 0 && (e.Rating < 1 || e.Rating > 5) {
		return ErrBadRating
	}
	return nil
}
