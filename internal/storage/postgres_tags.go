package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paperhub/paperhub/internal/paper"
)

func (p *PG) CreateTag(ctx context.Context, t *paper.Tag) error {
	if err := t.Validate(); err != nil {
		return err
	}
	existing, err := p.GetTagByName(ctx, t.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("tag %q: %w", t.Name, ErrDuplicate)
	}

	now := time.Now().UTC()
	err = p.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, description, created_at) VALUES ($1, $2, $3)
		RETURNING id`,
		t.Name, nullableString(t.Description), now).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("inserting tag: %w", err)
	}
	t.CreatedAt = now
	return nil
}

func (p *PG) GetTagByName(ctx context.Context, name string) (*paper.Tag, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM tags WHERE name = $1`, name)
	return scanPGTag(row)
}

func (p *PG) GetOrCreateTag(ctx context.Context, name string) (*paper.Tag, error) {
	t, err := p.GetTagByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return t, nil
	}
	t = &paper.Tag{Name: name}
	if err := p.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *PG) ListTags(ctx context.Context) ([]paper.Tag, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.description, t.created_at, COUNT(pt.paper_id)
		FROM tags t
		LEFT JOIN paper_tags pt ON pt.tag_id = t.id
		GROUP BY t.id, t.name, t.description, t.created_at
		ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []paper.Tag
	for rows.Next() {
		var (
			t    paper.Tag
			desc sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &desc, &t.CreatedAt, &t.PaperCount); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		t.Description = desc.String
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (p *PG) DeleteTag(ctx context.Context, name string) error {
	t, err := p.GetTagByName(ctx, name)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM paper_tags WHERE tag_id = $1`, t.ID); err != nil {
		return fmt.Errorf("deleting tag attachments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, t.ID); err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

func (p *PG) TagPaper(ctx context.Context, paperID int64, tagName string) error {
	ok, err := p.pgPaperExists(ctx, paperID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("paper %d: %w", paperID, ErrNotFound)
	}
	t, err := p.GetOrCreateTag(ctx, tagName)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO paper_tags (paper_id, tag_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (paper_id, tag_id) DO NOTHING`,
		paperID, t.ID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("tagging paper: %w", err)
	}
	return nil
}

func (p *PG) UntagPaper(ctx context.Context, paperID int64, tagName string) error {
	t, err := p.GetTagByName(ctx, tagName)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("tag %q: %w", tagName, ErrNotFound)
	}
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM paper_tags WHERE paper_id = $1 AND tag_id = $2`, paperID, t.ID)
	if err != nil {
		return fmt.Errorf("untagging paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("untagging paper: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("paper %d has no tag %q: %w", paperID, tagName, ErrNotFound)
	}
	return nil
}

func (p *PG) PaperTags(ctx context.Context, paperID int64) ([]paper.Tag, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.description, t.created_at
		FROM tags t
		JOIN paper_tags pt ON pt.tag_id = t.id
		WHERE pt.paper_id = $1
		ORDER BY t.name`, paperID)
	if err != nil {
		return nil, fmt.Errorf("listing paper tags: %w", err)
	}
	defer rows.Close()

	var tags []paper.Tag
	for rows.Next() {
		t, err := scanPGTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

func scanPGTag(row scanner) (*paper.Tag, error) {
	var (
		t    paper.Tag
		desc sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &desc, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning tag: %w", err)
	}
	t.Description = desc.String
	return &t, nil
}
