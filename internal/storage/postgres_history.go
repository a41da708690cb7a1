package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paperhub/paperhub/internal/paper"
)

func (p *PG) RecordRead(ctx context.Context, e *paper.ReadingEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	ok, err := p.pgPaperExists(ctx, e.PaperID)
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

	err = p.db.QueryRowContext(ctx, `
		INSERT INTO reading_history (paper_id, user_id, read_at, rating, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.PaperID, e.UserID, e.ReadAt, nullableRating(e.Rating),
		nullableString(e.Notes)).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("recording read: %w", err)
	}
	return nil
}

func (p *PG) ReadPaperIDs(ctx context.Context, userID string) ([]int64, error) {
	if userID == "" {
		userID = paper.DefaultUser
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT paper_id FROM reading_history
		WHERE user_id = $1
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

func (p *PG) ListHistory(ctx context.Context, userID string, limit int) ([]paper.ReadingEntry, error) {
	if userID == "" {
		userID = paper.DefaultUser
	}
	query := `
		SELECT h.id, h.paper_id, h.user_id, h.read_at, h.rating, h.notes, p.title
		FROM reading_history h
		LEFT JOIN papers p ON p.id = h.paper_id
		WHERE h.user_id = $1
		ORDER BY h.read_at DESC, h.id DESC`
	args := []any{userID}
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $2`
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []paper.ReadingEntry
	for rows.Next() {
		var (
			e      paper.ReadingEntry
			rating sql.NullInt64
			notes  sql.NullString
			title  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.PaperID, &e.UserID, &e.ReadAt, &rating, &notes, &title); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.Rating = int(rating.Int64)
		e.Notes = notes.String
		e.PaperTitle = title.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
