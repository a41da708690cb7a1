package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/paperhub/paperhub/internal/embedding"
	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/vector"
)

func (p *PG) SetPaperVector(ctx context.Context, paperID int64, rec embedding.Record) error {
	if err := vector.CheckDims(rec.Vector, vector.Dims); err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := p.db.ExecContext(ctx, `
		UPDATE papers
		SET embedding = $1, embedding_model = $2, embedding_hash = $3,
			embedded_at = $4, updated_at = $5
		WHERE id = $6`,
		pgvector.NewVector(toFloat32s(rec.Vector)), rec.Model, rec.TextHash,
		now, now, paperID)
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

func (p *PG) ClearPaperVector(ctx context.Context, paperID int64) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE papers
		SET embedding = NULL, embedding_model = NULL, embedding_hash = NULL,
			embedded_at = NULL, updated_at = $1
		WHERE id = $2`,
		time.Now().UTC(), paperID)
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

// SimilarByVector ranks papers by cosine similarity in the database using
// the pgvector <=> operator. Distance orders ascending, so the best match
// comes first; ties fall back to ascending id, matching the SQLite backend.
func (p *PG) SimilarByVector(ctx context.Context, query vector.Vector, limit int, exclude []int64) ([]paper.Match, error) {
	if err := vector.CheckDims(query, vector.Dims); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT `+selectPGPaperFields+`, 1 - (embedding <=> $1::vector) AS similarity
		FROM papers
		WHERE embedding IS NOT NULL AND embedding_model = $2 AND NOT (id = ANY($3))
		ORDER BY embedding <=> $1::vector, id
		LIMIT $4`,
		vector.Format(query), p.model, int64Array(exclude), limit)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}
	defer rows.Close()

	var matches []paper.Match
	for rows.Next() {
		m, err := scanPGMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func scanPGMatch(row scanner) (*paper.Match, error) {
	var (
		m                                    paper.Match
		arxivID, authors, abstract, category sql.NullString
		published, pdfURL, pdfPath           sql.NullString
		vecModel, vecHash                    sql.NullString
		embeddedAt                           sql.NullTime
	)
	err := row.Scan(&m.Paper.ID, &arxivID, &m.Paper.Title, &authors, &abstract, &category,
		&published, &pdfURL, &pdfPath, &vecModel, &vecHash, &embeddedAt,
		&m.Paper.CreatedAt, &m.Paper.UpdatedAt, &m.Similarity)
	if err != nil {
		return nil, fmt.Errorf("scanning match: %w", err)
	}

	m.Paper.ArxivID = arxivID.String
	m.Paper.Abstract = abstract.String
	m.Paper.Category = category.String
	m.Paper.Published = published.String
	m.Paper.PDFURL = pdfURL.String
	m.Paper.PDFPath = pdfPath.String
	m.Paper.VectorModel = vecModel.String
	m.Paper.VectorHash = vecHash.String
	m.Paper.EmbeddedAt = embeddedAt.Time

	if m.Paper.Authors, err = decodeAuthors(authors.String); err != nil {
		return nil, fmt.Errorf("paper %d: %w", m.Paper.ID, err)
	}
	return &m, nil
}

// int64Array wraps ids for use as a Postgres int8[] parameter. A nil slice
// must become an empty array, not NULL, or = ANY() filters out every row.
func int64Array(ids []int64) any {
	if ids == nil {
		ids = []int64{}
	}
	return pq.Array(ids)
}

func toFloat32s(v vector.Vector) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
