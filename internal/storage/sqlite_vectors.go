package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/paperhub/paperhub/internal/embedding"
	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/vector"
)

// SetPaperVector stores a freshly computed vector on a paper, together with
// the model tag and text hash that tell us later whether it is still good.
func (d *DB) SetPaperVector(ctx context.Context, paperID int64, rec embedding.Record) error {
	if err := vector.CheckDims(rec.Vector, vector.Dims); err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := d.db.ExecContext(ctx, `
		UPDATE papers
		SET embedding = ?, embedding_model = ?, embedding_hash = ?, embedded_at = ?, updated_at = ?
		WHERE id = ?`,
		vector.Format(rec.Vector), rec.Model, rec.TextHash,
		formatTime(now), formatTime(now), paperID)
	if err != nil {
		return fmt.Errorf("storing vector: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storing vector: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("paper %d: %w", paperID, ErrNotFound)
	}
	return nil
}

// ClearPaperVector drops a paper's vector and its bookkeeping columns.
func (d *DB) ClearPaperVector(ctx context.Context, paperID int64) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE papers
		SET embedding = NULL, embedding_model = NULL, embedding_hash = NULL,
			embedded_at = NULL, updated_at = ?
		WHERE id = ?`,
		formatTime(time.Now().UTC()), paperID)
	if err != nil {
		return fmt.Errorf("clearing vector: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("clearing vector: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("paper %d: %w", paperID, ErrNotFound)
	}
	return nil
}

// SimilarByVector ranks papers by cosine similarity to query, best first,
// with ties broken by ascending id. Only vectors stored under the current
// model participate; ids in exclude never appear in the result.
//
// SQLite has no vector index, so this scans every stored vector. That is
// fine at the scale of a personal library.
func (d *DB) SimilarByVector(ctx context.Context, query vector.Vector, limit int, exclude []int64) ([]paper.Match, error) {
	if err := vector.CheckDims(query, vector.Dims); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	excluded := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, embedding FROM papers
		WHERE embedding IS NOT NULL AND embedding_model = ?`, d.model)
	if err != nil {
		return nil, fmt.Errorf("scanning vectors: %w", err)
	}
	defer rows.Close()

	type scored struct {
		id  int64
		sim float64
	}
	var candidates []scored
	for rows.Next() {
		var (
			id   int64
			text string
		)
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scanning vector row: %w", err)
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		v, err := vector.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("paper %d: %w", id, err)
		}
		if err := vector.CheckDims(v, vector.Dims); err != nil {
			return nil, fmt.Errorf("paper %d: %w", id, err)
		}
		candidates = append(candidates, scored{id: id, sim: vector.Cosine(query, v)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning vectors: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].id < candidates[j].id
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	byID, err := d.summariesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	matches := make([]paper.Match, 0, len(candidates))
	for _, c := range candidates {
		p, ok := byID[c.id]
		if !ok {
			continue
		}
		matches = append(matches, paper.Match{Paper: p, Similarity: c.sim})
	}
	return matches, nil
}

func (d *DB) summariesByID(ctx context.Context, ids []int64) (map[int64]paper.Paper, error) {
	query := `SELECT ` + selectPaperFields + ` FROM papers WHERE id IN (` +
		placeholders(len(ids)) + `)`
	rows, err := d.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]paper.Paper, len(ids))
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		byID[p.ID] = *p
	}
	return byID, rows.Err()
}
