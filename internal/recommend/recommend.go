// Package recommend ranks papers against a query vector built from what the
// user is looking at or has read. It holds the strategy logic only; vectors
// come from storage and similarity ranking from a Searcher, so the same
// strategies run unchanged over the SQLite and Postgres backends.
package recommend

import (
	"context"

	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/vector"
)

const (
	// DefaultLimit is used when the caller asks for zero results.
	DefaultLimit = 10

	// DefaultHistoryWindow is how many distinct recently read papers feed
	// the history centroid.
	DefaultHistoryWindow = 10

	// HybridHistoryWindow is the (smaller) window the hybrid strategy
	// blends into the current paper's vector.
	HybridHistoryWindow = 5

	// Hybrid strategy weights: mostly the paper being viewed, seasoned
	// with the reader's recent history.
	HybridPaperWeight   = 0.7
	HybridHistoryWeight = 0.3
)

// Store is the slice of the persistence layer the strategies need.
type Store interface {
	GetPaper(ctx context.Context, id int64) (*paper.Paper, error)
	GetPapersByIDs(ctx context.Context, ids []int64) ([]paper.Paper, error)
	ReadPaperIDs(ctx context.Context, userID string) ([]int64, error)
}

// Searcher ranks stored papers by similarity to a query vector, best first,
// skipping the excluded ids.
type Searcher interface {
	SimilarByVector(ctx context.Context, query vector.Vector, limit int, exclude []int64) ([]paper.Match, error)
}

// Recommender wires a Store and a Searcher into the three strategies. Both
// storage backends satisfy both interfaces, so they are usually the same
// value.
type Recommender struct {
	store    Store
	searcher Searcher
}

func New(store Store, searcher Searcher) *Recommender {
	return &Recommender{store: store, searcher: searcher}
}

// ByPaper recommends papers similar to the one being viewed. A paper that
// does not exist or has no vector yields no recommendations rather than an
// error; there is simply nothing to rank against.
func (r *Recommender) ByPaper(ctx context.Context, paperID int64, limit int) ([]paper.Match, error) {
	p, err := r.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.HasVector() {
		return nil, nil
	}
	return r.searcher.SimilarByVector(ctx, p.Vector, normalizeLimit(limit), []int64{paperID})
}

// ByHistory recommends papers near the centroid of the user's most recent
// distinct reads, at most window of them (DefaultHistoryWindow when window
// is zero or negative). Everything the user has ever read is excluded from
// the results, not just the papers inside the centroid window.
func (r *Recommender) ByHistory(ctx context.Context, userID string, limit, window int) ([]paper.Match, error) {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	centroid, read, err := r.historyCentroid(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	if centroid == nil {
		return nil, nil
	}
	return r.searcher.SimilarByVector(ctx, centroid, normalizeLimit(limit), read)
}

// Hybrid recommends papers for a reader who is currently looking at one:
// the query blends the paper's vector with the recent-history centroid.
// With no usable history it degrades to the paper's vector alone.
func (r *Recommender) Hybrid(ctx context.Context, paperID int64, userID string, limit int) ([]paper.Match, error) {
	p, err := r.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.HasVector() {
		return nil, nil
	}

	centroid, read, err := r.historyCentroid(ctx, userID, HybridHistoryWindow)
	if err != nil {
		return nil, err
	}
	query := p.Vector
	if centroid != nil {
		query, err = vector.Blend(p.Vector, HybridPaperWeight, centroid, HybridHistoryWeight)
		if err != nil {
			return nil, err
		}
	}
	exclude := distinct(append([]int64{paperID}, read...))
	return r.searcher.SimilarByVector(ctx, query, normalizeLimit(limit), exclude)
}

// historyCentroid returns the mean vector of the user's most recent distinct
// reads (at most window of them, skipping papers without a current vector)
// plus every distinct paper id the user has read. A nil centroid means the
// history gave us nothing to work with.
func (r *Recommender) historyCentroid(ctx context.Context, userID string, window int) (vector.Vector, []int64, error) {
	reads, err := r.store.ReadPaperIDs(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	all := distinct(reads)
	if len(all) == 0 {
		return nil, nil, nil
	}

	recent := all
	if len(recent) > window {
		recent = recent[:window]
	}
	papers, err := r.store.GetPapersByIDs(ctx, recent)
	if err != nil {
		return nil, nil, err
	}

	var vecs []vector.Vector
	for i := range papers {
		if papers[i].HasVector() {
			vecs = append(vecs, papers[i].Vector)
		}
	}
	if len(vecs) == 0 {
		return nil, all, nil
	}
	centroid, err := vector.Mean(vecs)
	if err != nil {
		return nil, nil, err
	}
	return centroid, all, nil
}

// distinct drops repeated ids, keeping the first appearance of each. Reads
// arrive most recent first, so the result is ordered the same way.
func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
