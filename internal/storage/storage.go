// Package storage persists papers, tags, and reading history, and answers
// vector similarity queries. Two backends implement the same Store surface:
// an embedded SQLite database (the default) and PostgreSQL with the pgvector
// extension for installations that want server-side search.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/paperhub/paperhub/internal/embedding"
	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/vector"
)

var (
	// ErrNotFound reports a mutation aimed at a row that does not exist.
	// Lookups never return it; an absent row reads as (nil, nil).
	ErrNotFound = errors.New("not found")

	// ErrDuplicate reports an insert that would violate a uniqueness rule,
	// such as an arXiv id or tag name that is already taken.
	ErrDuplicate = errors.New("already exists")
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config selects and parameterizes a backend.
type Config struct {
	Backend     string // BackendSQLite (default) or BackendPostgres
	Path        string // SQLite database file
	DatabaseURL string // PostgreSQL connection string
	Model       string // embedding model tag considered current
}

// Filters narrows ListPapers. Zero values mean no filter on that field.
// Date bounds compare against the published date as YYYY-MM-DD strings.
type Filters struct {
	Category string
	Tag      string
	From     string
	To       string
	Limit    int
	Offset   int
}

// CategoryCount is one row of a per-category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats summarizes the whole library.
type Stats struct {
	Papers       int             `json:"papers"`
	WithVectors  int             `json:"with_vectors"`
	Tags         int             `json:"tags"`
	TaggedPapers int             `json:"tagged_papers"`
	Reads        int             `json:"reads"`
	Readers      int             `json:"readers"`
	Categories   []CategoryCount `json:"categories,omitempty"`
}

// VectorStats classifies every paper by the state of its stored vector
// relative to the current embedding model.
type VectorStats struct {
	Papers        int     `json:"papers"`
	WithVector    int     `json:"with_vector"`
	Missing       int     `json:"missing"`
	Stale         int     `json:"stale"`
	ModelMismatch int     `json:"model_mismatch"`
	MissingIDs    []int64 `json:"missing_ids,omitempty"`
	StaleIDs      []int64 `json:"stale_ids,omitempty"`
	MismatchIDs   []int64 `json:"mismatch_ids,omitempty"`
}

// Store is the full persistence surface. Both backends implement it.
//
// Single-row lookups return (nil, nil) when the row does not exist so that
// callers can distinguish absence from failure without an errors.Is dance.
type Store interface {
	Close() error

	CreatePaper(ctx context.Context, p *paper.Paper) error
	GetPaper(ctx context.Context, id int64) (*paper.Paper, error)
	GetPaperByArxivID(ctx context.Context, arxivID string) (*paper.Paper, error)
	GetPapersByIDs(ctx context.Context, ids []int64) ([]paper.Paper, error)
	ListPapers(ctx context.Context, f Filters) ([]paper.Paper, error)
	SearchPapers(ctx context.Context, query string, limit int) ([]paper.Paper, error)
	UpdatePaper(ctx context.Context, p *paper.Paper) error
	DeletePaper(ctx context.Context, id int64) error
	CountPapers(ctx context.Context) (int, error)

	SetPaperVector(ctx context.Context, paperID int64, rec embedding.Record) error
	ClearPaperVector(ctx context.Context, paperID int64) error
	SimilarByVector(ctx context.Context, query vector.Vector, limit int, exclude []int64) ([]paper.Match, error)

	CreateTag(ctx context.Context, t *paper.Tag) error
	GetTagByName(ctx context.Context, name string) (*paper.Tag, error)
	GetOrCreateTag(ctx context.Context, name string) (*paper.Tag, error)
	ListTags(ctx context.Context) ([]paper.Tag, error)
	DeleteTag(ctx context.Context, name string) error
	TagPaper(ctx context.Context, paperID int64, tagName string) error
	UntagPaper(ctx context.Context, paperID int64, tagName string) error
	PaperTags(ctx context.Context, paperID int64) ([]paper.Tag, error)

	RecordRead(ctx context.Context, e *paper.ReadingEntry) error
	ReadPaperIDs(ctx context.Context, userID string) ([]int64, error)
	ListHistory(ctx context.Context, userID string, limit int) ([]paper.ReadingEntry, error)

	Stats(ctx context.Context) (*Stats, error)
}

// Open opens the backend named by cfg. An empty backend means SQLite.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendSQLite:
		return OpenDB(cfg.Path, cfg.Model)
	case BackendPostgres:
		return OpenPG(ctx, cfg.DatabaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// VectorStatus audits every paper's stored vector against the current model
// and the current text of the paper. A vector is stale when its recorded
// text hash no longer matches the paper, and mismatched when it was produced
// by a different model.
func VectorStatus(ctx context.Context, s Store, model string) (*VectorStats, error) {
	papers, err := s.ListPapers(ctx, Filters{})
	if err != nil {
		return nil, err
	}
	stats := &VectorStats{Papers: len(papers)}
	for i := range papers {
		p := &papers[i]
		switch {
		case p.VectorModel == "":
			stats.Missing++
			stats.MissingIDs = append(stats.MissingIDs, p.ID)
		case p.VectorModel != model:
			stats.ModelMismatch++
			stats.MismatchIDs = append(stats.MismatchIDs, p.ID)
		case p.VectorHash != embedding.TextHash(embedding.PaperText(p)):
			stats.WithVector++
			stats.Stale++
			stats.StaleIDs = append(stats.StaleIDs, p.ID)
		default:
			stats.WithVector++
		}
	}
	return stats, nil
}

// EmbedCandidates returns the papers that need a fresh vector: those with no
// vector at all, those embedded under a different model, and, when
// includeStale is set, those whose text changed since they were embedded.
func EmbedCandidates(ctx context.Context, s Store, model string, includeStale bool) ([]paper.Paper, error) {
	papers, err := s.ListPapers(ctx, Filters{})
	if err != nil {
		return nil, err
	}
	var out []paper.Paper
	for i := range papers {
		p := &papers[i]
		switch {
		case p.VectorModel == "" || p.VectorModel != model:
			out = append(out, *p)
		case includeStale && p.VectorHash != embedding.TextHash(embedding.PaperText(p)):
			out = append(out, *p)
		}
	}
	return out, nil
}
