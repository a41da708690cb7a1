package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/vector"
)

// PG is the PostgreSQL backend. It needs the pgvector extension and pushes
// similarity ranking into the database instead of scanning in process.
type PG struct {
	db    *sql.DB
	model string
}

// The %d is the embedding dimensionality; see vector.Dims.
const pgSchemaDDL = `
CREATE TABLE IF NOT EXISTS papers (
	id BIGSERIAL PRIMARY KEY,
	arxiv_id TEXT UNIQUE,
	title TEXT NOT NULL,
	authors_json TEXT,
	abstract TEXT,
	category TEXT,
	published TEXT,
	pdf_url TEXT,
	pdf_path TEXT,
	embedding vector(%d),
	embedding_model TEXT,
	embedding_hash TEXT,
	embedded_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_papers_category ON papers(category);
CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published);

CREATE TABLE IF NOT EXISTS tags (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS paper_tags (
	paper_id BIGINT NOT NULL,
	tag_id BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE(paper_id, tag_id)
);

CREATE TABLE IF NOT EXISTS reading_history (
	id BIGSERIAL PRIMARY KEY,
	paper_id BIGINT NOT NULL,
	user_id TEXT NOT NULL,
	read_at TIMESTAMPTZ NOT NULL,
	rating INTEGER,
	notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_history_user ON reading_history(user_id, read_at DESC);
`

const selectPGPaperFields = `id, arxiv_id, title, authors_json, abstract, category, published,
	pdf_url, pdf_path, embedding_model, embedding_hash, embedded_at, created_at, updated_at`

const selectPGPaperFieldsFull = selectPGPaperFields + `, embedding::text`

// OpenPG connects to the database named by dsn and makes sure the schema and
// the pgvector extension are in place.
func OpenPG(ctx context.Context, dsn, model string) (*PG, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling pgvector (is the extension installed?): %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(pgSchemaDDL, vector.Dims)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PG{db: db, model: model}, nil
}

// NewPG wraps an existing connection without touching the schema. Tests use
// it; production code goes through OpenPG.
func NewPG(db *sql.DB, model string) *PG {
	return &PG{db: db, model: model}
}

func (p *PG) Close() error {
	return p.db.Close()
}

func (p *PG) CreatePaper(ctx context.Context, pp *paper.Paper) error {
	if err := pp.Validate(); err != nil {
		return err
	}
	if pp.ArxivID != "" {
		existing, err := p.GetPaperByArxivID(ctx, pp.ArxivID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("paper with arXiv id %s: %w", pp.ArxivID, ErrDuplicate)
		}
	}

	authors, err := encodeAuthors(pp.Authors)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	pp.CreatedAt = now
	pp.UpdatedAt = now

	err = p.db.QueryRowContext(ctx, `
		INSERT INTO papers (arxiv_id, title, authors_json, abstract, category, published,
			pdf_url, pdf_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		nullableString(pp.ArxivID), pp.Title, nullableString(authors),
		nullableString(pp.Abstract), nullableString(pp.Category), nullableString(pp.Published),
		nullableString(pp.PDFURL), nullableString(pp.PDFPath), now, now).Scan(&pp.ID)
	if err != nil {
		return fmt.Errorf("inserting paper: %w", err)
	}
	return nil
}

func (p *PG) GetPaper(ctx context.Context, id int64) (*paper.Paper, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+selectPGPaperFieldsFull+` FROM papers WHERE id = $1`, id)
	return p.scanPGPaperFull(row)
}

func (p *PG) GetPaperByArxivID(ctx context.Context, arxivID string) (*paper.Paper, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+selectPGPaperFieldsFull+` FROM papers WHERE arxiv_id = $1`, arxivID)
	return p.scanPGPaperFull(row)
}

func (p *PG) GetPapersByIDs(ctx context.Context, ids []int64) ([]paper.Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+selectPGPaperFieldsFull+` FROM papers WHERE id = ANY($1) ORDER BY id`,
		int64Array(ids))
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []paper.Paper
	for rows.Next() {
		pp, err := p.scanPGPaperFull(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *pp)
	}
	return papers, rows.Err()
}

func (p *PG) ListPapers(ctx context.Context, f Filters) ([]paper.Paper, error) {
	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		conds = append(conds, fmt.Sprintf(`id IN (
			SELECT pt.paper_id FROM paper_tags pt
			JOIN tags t ON t.id = pt.tag_id WHERE t.name = $%d)`, len(args)))
	}
	if f.From != "" {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("published >= $%d", len(args)))
	}
	if f.To != "" {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("published <= $%d", len(args)))
	}

	query := `SELECT ` + selectPGPaperFields + ` FROM papers`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
		if f.Offset > 0 {
			args = append(args, f.Offset)
			query += fmt.Sprintf(` OFFSET $%d`, len(args))
		}
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()
	return scanPGPapers(rows)
}

// SearchPapers matches a substring of the title, abstract, or author list,
// case-insensitively. Postgres installs have no FTS5; plain ILIKE matches
// how small libraries actually get searched.
func (p *PG) SearchPapers(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	sqlQuery := `SELECT ` + selectPGPaperFields + ` FROM papers
		WHERE title ILIKE '%' || $1 || '%'
			OR abstract ILIKE '%' || $1 || '%'
			OR authors_json ILIKE '%' || $1 || '%'
		ORDER BY id DESC`
	args := []any{query}
	if limit > 0 {
		args = append(args, limit)
		sqlQuery += ` LIMIT $2`
	}

	rows, err := p.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()
	return scanPGPapers(rows)
}

func (p *PG) UpdatePaper(ctx context.Context, pp *paper.Paper) error {
	if err := pp.Validate(); err != nil {
		return err
	}
	if pp.ArxivID != "" {
		existing, err := p.GetPaperByArxivID(ctx, pp.ArxivID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != pp.ID {
			return fmt.Errorf("paper with arXiv id %s: %w", pp.ArxivID, ErrDuplicate)
		}
	}

	authors, err := encodeAuthors(pp.Authors)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	res, err := p.db.ExecContext(ctx, `
		UPDATE papers SET arxiv_id = $1, title = $2, authors_json = $3, abstract = $4,
			category = $5, published = $6, pdf_url = $7, pdf_path = $8, updated_at = $9
		WHERE id = $10`,
		nullableString(pp.ArxivID), pp.Title, nullableString(authors),
		nullableString(pp.Abstract), nullableString(pp.Category), nullableString(pp.Published),
		nullableString(pp.PDFURL), nullableString(pp.PDFPath), now, pp.ID)
	if err != nil {
		return fmt.Errorf("updating paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating paper: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("paper %d: %w", pp.ID, ErrNotFound)
	}
	pp.UpdatedAt = now
	return nil
}

func (p *PG) DeletePaper(ctx context.Context, id int64) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting paper: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("paper %d: %w", id, ErrNotFound)
	}
	for _, stmt := range []string{
		`DELETE FROM paper_tags WHERE paper_id = $1`,
		`DELETE FROM reading_history WHERE paper_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("deleting paper %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

func (p *PG) CountPapers(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

func (p *PG) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM papers`, &s.Papers},
		{`SELECT COUNT(*) FROM papers WHERE embedding IS NOT NULL`, &s.WithVectors},
		{`SELECT COUNT(*) FROM tags`, &s.Tags},
		{`SELECT COUNT(DISTINCT paper_id) FROM paper_tags`, &s.TaggedPapers},
		{`SELECT COUNT(*) FROM reading_history`, &s.Reads},
		{`SELECT COUNT(DISTINCT user_id) FROM reading_history`, &s.Readers},
	}
	for _, c := range counts {
		if err := p.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("gathering stats: %w", err)
		}
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM papers
		WHERE category IS NOT NULL AND category != ''
		GROUP BY category ORDER BY COUNT(*) DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("gathering stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("gathering stats: %w", err)
		}
		s.Categories = append(s.Categories, c)
	}
	return s, rows.Err()
}

func (p *PG) pgPaperExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := p.db.QueryRowContext(ctx, `SELECT 1 FROM papers WHERE id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking paper %d: %w", id, err)
	}
	return true, nil
}

func scanPGPaper(row scanner) (*paper.Paper, error) {
	var (
		p                                    paper.Paper
		arxivID, authors, abstract, category sql.NullString
		published, pdfURL, pdfPath           sql.NullString
		vecModel, vecHash                    sql.NullString
		embeddedAt                           sql.NullTime
	)
	err := row.Scan(&p.ID, &arxivID, &p.Title, &authors, &abstract, &category,
		&published, &pdfURL, &pdfPath, &vecModel, &vecHash, &embeddedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning paper: %w", err)
	}

	p.ArxivID = arxivID.String
	p.Abstract = abstract.String
	p.Category = category.String
	p.Published = published.String
	p.PDFURL = pdfURL.String
	p.PDFPath = pdfPath.String
	p.VectorModel = vecModel.String
	p.VectorHash = vecHash.String
	p.EmbeddedAt = embeddedAt.Time

	if p.Authors, err = decodeAuthors(authors.String); err != nil {
		return nil, fmt.Errorf("paper %d: %w", p.ID, err)
	}
	return &p, nil
}

func (pg *PG) scanPGPaperFull(row scanner) (*paper.Paper, error) {
	var (
		p                                    paper.Paper
		arxivID, authors, abstract, category sql.NullString
		published, pdfURL, pdfPath           sql.NullString
		vecModel, vecHash, vecText           sql.NullString
		embeddedAt                           sql.NullTime
	)
	err := row.Scan(&p.ID, &arxivID, &p.Title, &authors, &abstract, &category,
		&published, &pdfURL, &pdfPath, &vecModel, &vecHash, &embeddedAt,
		&p.CreatedAt, &p.UpdatedAt, &vecText)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning paper: %w", err)
	}

	p.ArxivID = arxivID.String
	p.Abstract = abstract.String
	p.Category = category.String
	p.Published = published.String
	p.PDFURL = pdfURL.String
	p.PDFPath = pdfPath.String
	p.VectorModel = vecModel.String
	p.VectorHash = vecHash.String
	p.EmbeddedAt = embeddedAt.Time

	if p.Authors, err = decodeAuthors(authors.String); err != nil {
		return nil, fmt.Errorf("paper %d: %w", p.ID, err)
	}
	if vecText.Valid && vecModel.String == pg.model {
		v, err := vector.Parse(vecText.String)
		if err != nil {
			return nil, fmt.Errorf("paper %d: %w", p.ID, err)
		}
		p.Vector = v
	}
	return &p, nil
}

func scanPGPapers(rows *sql.Rows) ([]paper.Paper, error) {
	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPGPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}
