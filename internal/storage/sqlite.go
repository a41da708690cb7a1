package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/vector"
)

// DB is the SQLite backend. It keeps the whole library in a single file and
// answers similarity queries in process by scanning stored vectors.
type DB struct {
	db    *sql.DB
	model string
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS papers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	arxiv_id TEXT UNIQUE,
	title TEXT NOT NULL,
	authors_json TEXT,
	abstract TEXT,
	category TEXT,
	published TEXT,
	pdf_url TEXT,
	pdf_path TEXT,
	embedding TEXT,
	embedding_model TEXT,
	embedding_hash TEXT,
	embedded_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_papers_category ON papers(category);
CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published);

CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
	id UNINDEXED,
	title,
	abstract,
	authors_text
);

CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS paper_tags (
	paper_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE(paper_id, tag_id)
);

CREATE TABLE IF NOT EXISTS reading_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	paper_id INTEGER NOT NULL,
	user_id TEXT NOT NULL,
	read_at TEXT NOT NULL,
	rating INTEGER,
	notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_history_user ON reading_history(user_id, read_at);
`

// selectPaperFields lists the columns every paper scan reads, in scan order.
// The raw embedding is deliberately absent; full reads append it.
const selectPaperFields = `id, arxiv_id, title, authors_json, abstract, category, published,
	pdf_url, pdf_path, embedding_model, embedding_hash, embedded_at, created_at, updated_at`

const selectPaperFieldsFull = selectPaperFields + `, embedding`

// OpenDB opens (creating if needed) the SQLite library at path. The model
// tag marks which stored vectors count as current for similarity search.
func OpenDB(path, model string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids lock errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db, model: model}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// CreatePaper inserts p and fills in its assigned ID and timestamps.
func (d *DB) CreatePaper(ctx context.Context, p *paper.Paper) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ArxivID != "" {
		existing, err := d.GetPaperByArxivID(ctx, p.ArxivID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("paper with arXiv id %s: %w", p.ArxivID, ErrDuplicate)
		}
	}

	authors, err := encodeAuthors(p.Authors)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO papers (arxiv_id, title, authors_json, abstract, category, published,
			pdf_url, pdf_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(p.ArxivID), p.Title, nullableString(authors),
		nullableString(p.Abstract), nullableString(p.Category), nullableString(p.Published),
		nullableString(p.PDFURL), nullableString(p.PDFPath),
		formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("inserting paper: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading paper id: %w", err)
	}
	p.ID = id

	if err := insertFTS(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing paper: %w", err)
	}
	return nil
}

// GetPaper returns the paper with the given id, vector included, or
// (nil, nil) when no such paper exists.
func (d *DB) GetPaper(ctx context.Context, id int64) (*paper.Paper, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+selectPaperFieldsFull+` FROM papers WHERE id = ?`, id)
	return d.scanPaperFull(row)
}

// GetPaperByArxivID looks a paper up by its arXiv identifier.
func (d *DB) GetPaperByArxivID(ctx context.Context, arxivID string) (*paper.Paper, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+selectPaperFieldsFull+` FROM papers WHERE arxiv_id = ?`, arxivID)
	return d.scanPaperFull(row)
}

// GetPapersByIDs returns the papers whose ids appear in ids, ordered by id
// ascending. Unknown ids are silently omitted.
func (d *DB) GetPapersByIDs(ctx context.Context, ids []int64) ([]paper.Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + selectPaperFieldsFull + ` FROM papers WHERE id IN (` +
		placeholders(len(ids)) + `) ORDER BY id`
	rows, err := d.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []paper.Paper
	for rows.Next() {
		p, err := d.scanPaperFull(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// ListPapers returns papers matching f, newest first.
func (d *DB) ListPapers(ctx context.Context, f Filters) ([]paper.Paper, error) {
	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Tag != "" {
		conds = append(conds, `id IN (
			SELECT pt.paper_id FROM paper_tags pt
			JOIN tags t ON t.id = pt.tag_id WHERE t.name = ?)`)
		args = append(args, f.Tag)
	}
	if f.From != "" {
		conds = append(conds, "published >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conds = append(conds, "published <= ?")
		args = append(args, f.To)
	}

	query := `SELECT ` + selectPaperFields + ` FROM papers`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, f.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// SearchPapers runs a full-text query over titles, abstracts, and author
// names. Results come back newest first.
func (d *DB) SearchPapers(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	fts := prepareFTSQuery(query)
	if fts == "" {
		return nil, nil
	}
	sqlQuery := `SELECT ` + selectPaperFields + ` FROM papers
		WHERE id IN (SELECT CAST(id AS INTEGER) FROM papers_fts WHERE papers_fts MATCH ?)
		ORDER BY id DESC`
	args := []any{fts}
	if limit > 0 {
		sqlQuery += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// UpdatePaper rewrites the stored row for p.ID. The paper's vector columns
// are left alone; a text change shows up later as a stale hash.
func (d *DB) UpdatePaper(ctx context.Context, p *paper.Paper) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ArxivID != "" {
		existing, err := d.GetPaperByArxivID(ctx, p.ArxivID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != p.ID {
			return fmt.Errorf("paper with arXiv id %s: %w", p.ArxivID, ErrDuplicate)
		}
	}

	authors, err := encodeAuthors(p.Authors)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE papers SET arxiv_id = ?, title = ?, authors_json = ?, abstract = ?,
			category = ?, published = ?, pdf_url = ?, pdf_path = ?, updated_at = ?
		WHERE id = ?`,
		nullableString(p.ArxivID), p.Title, nullableString(authors),
		nullableString(p.Abstract), nullableString(p.Category), nullableString(p.Published),
		nullableString(p.PDFURL), nullableString(p.PDFPath),
		formatTime(now), p.ID)
	if err != nil {
		return fmt.Errorf("updating paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating paper: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("paper %d: %w", p.ID, ErrNotFound)
	}
	p.UpdatedAt = now

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers_fts WHERE id = ?`, p.ID); err != nil {
		return fmt.Errorf("updating search index: %w", err)
	}
	if err := insertFTS(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing paper: %w", err)
	}
	return nil
}

// DeletePaper removes a paper along with its tags, history, and index entry.
func (d *DB) DeletePaper(ctx context.Context, id int64) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id)
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
		`DELETE FROM papers_fts WHERE id = ?`,
		`DELETE FROM paper_tags WHERE paper_id = ?`,
		`DELETE FROM reading_history WHERE paper_id = ?`,
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

func (d *DB) CountPapers(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// Stats gathers library-wide counts in one pass.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
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
		if err := d.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("gathering stats: %w", err)
		}
	}

	rows, err := d.db.QueryContext(ctx, `
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

func (d *DB) paperExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx, `SELECT 1 FROM papers WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking paper %d: %w", id, err)
	}
	return true, nil
}

func insertFTS(ctx context.Context, tx *sql.Tx, p *paper.Paper) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO papers_fts (id, title, abstract, authors_text)
		VALUES (?, ?, ?, ?)`,
		p.ID, p.Title, p.Abstract, strings.Join(p.Authors, " "))
	if err != nil {
		return fmt.Errorf("indexing paper: %w", err)
	}
	return nil
}

// scanner abstracts over sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanPaper reads one summary row (no embedding column).
func scanPaper(row scanner) (*paper.Paper, error) {
	var (
		p                                    paper.Paper
		arxivID, authors, abstract, category sql.NullString
		published, pdfURL, pdfPath           sql.NullString
		vecModel, vecHash, embeddedAt        sql.NullString
		createdAt, updatedAt                 string
	)
	err := row.Scan(&p.ID, &arxivID, &p.Title, &authors, &abstract, &category,
		&published, &pdfURL, &pdfPath, &vecModel, &vecHash, &embeddedAt,
		&createdAt, &updatedAt)
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
	p.EmbeddedAt = parseTime(embeddedAt.String)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	if p.Authors, err = decodeAuthors(authors.String); err != nil {
		return nil, fmt.Errorf("paper %d: %w", p.ID, err)
	}
	return &p, nil
}

// scanPaperFull reads a row that includes the embedding column. Vectors
// stored under a model other than the current one are left unloaded; their
// model tag still reports what produced them.
func (d *DB) scanPaperFull(row scanner) (*paper.Paper, error) {
	var (
		p                                      paper.Paper
		arxivID, authors, abstract, category   sql.NullString
		published, pdfURL, pdfPath             sql.NullString
		vecModel, vecHash, embeddedAt, vecText sql.NullString
		createdAt, updatedAt                   string
	)
	err := row.Scan(&p.ID, &arxivID, &p.Title, &authors, &abstract, &category,
		&published, &pdfURL, &pdfPath, &vecModel, &vecHash, &embeddedAt,
		&createdAt, &updatedAt, &vecText)
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
	p.EmbeddedAt = parseTime(embeddedAt.String)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	if p.Authors, err = decodeAuthors(authors.String); err != nil {
		return nil, fmt.Errorf("paper %d: %w", p.ID, err)
	}
	if vecText.Valid && vecModel.String == d.model {
		v, err := vector.Parse(vecText.String)
		if err != nil {
			return nil, fmt.Errorf("paper %d: %w", p.ID, err)
		}
		p.Vector = v
	}
	return &p, nil
}

func scanPapers(rows *sql.Rows) ([]paper.Paper, error) {
	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// prepareFTSQuery turns free text into an FTS5 query. Each term is quoted so
// user input cannot smuggle in FTS operators, and terms are ANDed.
func prepareFTSQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, `"`, "")
		if t == "" {
			continue
		}
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// nullableString maps "" to NULL so optional columns stay NULL in the table.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func encodeAuthors(authors []string) (string, error) {
	if len(authors) == 0 {
		return "", nil
	}
	b, err := json.Marshal(authors)
	if err != nil {
		return "", fmt.Errorf("encoding authors: %w", err)
	}
	return string(b), nil
}

func decodeAuthors(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	var authors []string
	if err := json.Unmarshal([]byte(text), &authors); err != nil {
		return nil, fmt.Errorf("decoding authors: %w", err)
	}
	return authors, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime is lenient: timestamps are program-written, and a hand-edited
// row should not make the whole library unreadable.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
