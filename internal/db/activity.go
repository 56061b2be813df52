package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"merchant-backoffice/internal/models"
)

// InsertActivity records one attempted channel send.
func (d *DB) InsertActivity(ctx context.Context, e models.ActivityEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO email_activity (id, trigger_key, template_id, channel, recipient, subject, status, detail, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := d.Pool.Exec(ctx, query,
		e.ID,
		e.TriggerKey,
		e.TemplateID,
		e.Channel,
		e.Recipient,
		e.Subject,
		e.Status,
		e.Detail,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}
	return nil
}

// ListActivity returns dispatch log entries, newest first, with optional
// channel and status filters.
func (d *DB) ListActivity(ctx context.Context, channel, status string, limit, offset int) ([]models.ActivityEntry, error) {
	query := `
	SELECT id, trigger_key, template_id, channel, recipient, subject, status, detail, created_at
	FROM email_activity
	WHERE ($1 = '' OR channel = $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4`

	rows, err := d.Pool.Query(ctx, query, channel, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		err := rows.Scan(
			&e.ID,
			&e.TriggerKey,
			&e.TemplateID,
			&e.Channel,
			&e.Recipient,
			&e.Subject,
			&e.Status,
			&e.Detail,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SummarizeActivity aggregates send counts by channel and status for the
// analytics view.
func (d *DB) SummarizeActivity(ctx context.Context, since time.Time) ([]models.ActivitySummary, error) {
	query := `
	SELECT channel, status, COUNT(*)
	FROM email_activity
	WHERE created_at >= $1
	GROUP BY channel, status
	ORDER BY channel, status`

	rows, err := d.Pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize activity: %w", err)
	}
	defer rows.Close()

	var summary []models.ActivitySummary
	for rows.Next() {
		var s models.ActivitySummary
		if err := rows.Scan(&s.Channel, &s.Status, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan activity summary: %w", err)
		}
		summary = append(summary, s)
	}
	return summary, nil
}
