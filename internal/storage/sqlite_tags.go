package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paperhub/paperhub/internal/paper"
)

// CreateTag inserts a new tag. The name must not already be taken.
func (d *DB) CreateTag(ctx context.Context, t *paper.Tag) error {
	if err := t.Validate(); err != nil {
		return err
	}
	existing, err := d.GetTagByName(ctx, t.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("tag %q: %w", t.Name, ErrDuplicate)
	}

	now := time.Now().UTC()
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO tags (name, description, created_at) VALUES (?, ?, ?)`,
		t.Name, nullableString(t.Description), formatTime(now))
	if err != nil {
		return fmt.Errorf("inserting tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading tag id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	return nil
}

// GetTagByName returns the named tag, or (nil, nil) when it does not exist.
func (d *DB) GetTagByName(ctx context.Context, name string) (*paper.Tag, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM tags WHERE name = ?`, name)
	return scanTag(row)
}

// GetOrCreateTag returns the named tag, creating it first if needed.
func (d *DB) GetOrCreateTag(ctx context.Context, name string) (*paper.Tag, error) {
	t, err := d.GetTagByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return t, nil
	}
	t = &paper.Tag{Name: name}
	if err := d.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags alphabetically, each with its paper count.
func (d *DB) ListTags(ctx context.Context) ([]paper.Tag, error) {
	rows, err := d.db.QueryContext(ctx, `
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
			at   string
		)
		if err := rows.Scan(&t.ID, &t.Name, &desc, &at, &t.PaperCount); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		t.Description = desc.String
		t.CreatedAt = parseTime(at)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteTag removes the named tag and every paper attachment to it.
func (d *DB) DeleteTag(ctx context.Context, name string) error {
	t, err := d.GetTagByName(ctx, name)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM paper_tags WHERE tag_id = ?`, t.ID); err != nil {
		return fmt.Errorf("deleting tag attachments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, t.ID); err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// TagPaper attaches the named tag to a paper, creating the tag if it does
// not exist yet. Attaching a tag twice is a no-op.
func (d *DB) TagPaper(ctx context.Context, paperID int64, tagName string) error {
	ok, err := d.paperExists(ctx, paperID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("paper %d: %w", paperID, ErrNotFound)
	}
	t, err := d.GetOrCreateTag(ctx, tagName)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO paper_tags (paper_id, tag_id, created_at)
		VALUES (?, ?, ?)`,
		paperID, t.ID, formatTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("tagging paper: %w", err)
	}
	return nil
}

// UntagPaper detaches the named tag from a paper.
func (d *DB) UntagPaper(ctx context.Context, paperID int64, tagName string) error {
	t, err := d.GetTagByName(ctx, tagName)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("tag %q: %w", tagName, ErrNotFound)
	}
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM paper_tags WHERE paper_id = ? AND tag_id = ?`, paperID, t.ID)
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

// PaperTags returns the tags attached to one paper, alphabetically.
func (d *DB) PaperTags(ctx context.Context, paperID int64) ([]paper.Tag, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.description, t.created_at
		FROM tags t
		JOIN paper_tags pt ON pt.tag_id = t.id
		WHERE pt.paper_id = ?
		ORDER BY t.name`, paperID)
	if err != nil {
		return nil, fmt.Errorf("listing paper tags: %w", err)
	}
	defer rows.Close()

	var tags []paper.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

func scanTag(row scanner) (*paper.Tag, error) {
	var (
		t    paper.Tag
		desc sql.NullString
		at   string
	)
	err := row.Scan(&t.ID, &t.Name, &desc, &at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning tag: %w", err)
	}
	t.Description = desc.String
	t.CreatedAt = parseTime(at)
	return &t, nil
}
