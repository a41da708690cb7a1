package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paperhub/paperhub/internal/paper"
)

// RecordRead appends a read event. Reading the same paper again makes a new
// entry; history is an event log, not a set.
func (d *DB) RecordRead(ctx context.Context, e *paper.ReadingEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	ok, err := d.paperExists(ctx, e.PaperID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("paper %d: %w", e.PaperID, ErrNotFound)
	}
	if e.UserID == "" {
		e.UserID = paper.DefaultUser
	}
	if e.ReadAt.IsZero() {
		e.ReadAt = time.Now().UTC()
	}

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO reading_history (paper_id, user_id, read_at, rating, notes)
		VALUES (?, ?, ?, ?, ?)`,
		e.PaperID, e.UserID, formatTime(e.ReadAt), nullableRating(e.Rating),
		nullableString(e.Notes))
	if err != nil {
		return fmt.Errorf("recording read: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading entry id: %w", err)
	}
	e.ID = id
	return nil
}

// ReadPaperIDs returns every paper id the user has read, most recent first.
// A paper read three times appears three times.
func (d *DB) ReadPaperIDs(ctx context.Context, userID string) ([]int64, error) {
	if userID == "" {
		userID = paper.DefaultUser
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT paper_id FROM reading_history
		WHERE user_id = ?
		ORDER BY read_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing read papers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning read paper: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListHistory returns the user's read events, most recent first, with paper
// titles joined in for display. A limit of zero means all.
func (d *DB) ListHistory(ctx context.Context, userID string, limit int) ([]paper.ReadingEntry, error) {
	if userID == "" {
		userID = paper.DefaultUser
	}
	query := `
		SELECT h.id, h.paper_id, h.user_id, h.read_at, h.rating, h.notes, p.title
		FROM reading_history h
		LEFT JOIN papers p ON p.id = h.paper_id
		WHERE h.user_id = ?
		ORDER BY h.read_at DESC, h.id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []paper.ReadingEntry
	for rows.Next() {
		var (
			e      paper.ReadingEntry
			readAt string
			rating sql.NullInt64
			notes  sql.NullString
			title  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.PaperID, &e.UserID, &readAt, &rating, &notes, &title); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.ReadAt = parseTime(readAt)
		e.Rating = int(rating.Int64)
		e.Notes = notes.String
		e.PaperTitle = title.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableRating(r int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(r), Valid: r != 0}
}
