package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"merchant-backoffice/internal/models"
)

// EnqueueOutbox stores a deferred or retryable send for the outbox worker.
func (d *DB) EnqueueOutbox(ctx context.Context, e models.OutboxEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = models.OutboxStatusPending
	}
	if e.AttemptsRemaining <= 0 {
		e.AttemptsRemaining = 1
	}

	query := `
	INSERT INTO dispatch_outbox (id, payload, not_before, attempts_remaining, status, last_error, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := d.Pool.Exec(ctx, query,
		e.ID,
		e.Payload,
		e.NotBefore,
		e.AttemptsRemaining,
		e.Status,
		e.LastError,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox entry: %w", err)
	}
	return nil
}

// DueOutbox claims pending entries whose not_before has passed by flipping
// them to processing in the same statement that selects them. SKIP LOCKED
// keeps concurrent pollers from claiming the same rows, and the status flip
// keeps them claimed after the statement's locks are released, so an entry
// is never handed out twice.
func (d *DB) DueOutbox(ctx context.Context, now time.Time, limit int) ([]models.OutboxEntry, error) {
	query := `
	UPDATE dispatch_outbox
	SET status = $1, updated_at = NOW()
	WHERE id IN (
		SELECT id
		FROM dispatch_outbox
		WHERE status = $2 AND not_before <= $3
		ORDER BY not_before ASC
		LIMIT $4
		FOR UPDATE SKIP LOCKED
	)
	RETURNING id, payload, not_before, attempts_remaining, status, last_error, created_at, updated_at`

	rows, err := d.Pool.Query(ctx, query, models.OutboxStatusProcessing, models.OutboxStatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load due outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []models.OutboxEntry
	for rows.Next() {
		var e models.OutboxEntry
		err := rows.Scan(
			&e.ID,
			&e.Payload,
			&e.NotBefore,
			&e.AttemptsRemaining,
			&e.Status,
			&e.LastError,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FinishOutbox marks an entry sent or failed.
func (d *DB) FinishOutbox(ctx context.Context, id uuid.UUID, status, lastError string) error {
	query := `
	UPDATE dispatch_outbox
	SET status = $1, last_error = $2, attempts_remaining = 0, updated_at = NOW()
	WHERE id = $3`

	if _, err := d.Pool.Exec(ctx, query, status, lastError, id); err != nil {
		return fmt.Errorf("failed to finish outbox entry %s: %w", id, err)
	}
	return nil
}

// RescheduleOutbox returns a claimed entry to pending with a reduced attempt
// budget and a pushed-out not_before, making it eligible for pickup again.
func (d *DB) RescheduleOutbox(ctx context.Context, id uuid.UUID, notBefore time.Time, attemptsRemaining int, lastError string) error {
	query := `
	UPDATE dispatch_outbox
	SET status = $1, not_before = $2, attempts_remaining = $3, last_error = $4, updated_at = NOW()
	WHERE id = $5`

	if _, err := d.Pool.Exec(ctx, query, models.OutboxStatusPending, notBefore, attemptsRemaining, lastError, id); err != nil {
		return fmt.Errorf("failed to reschedule outbox entry %s: %w", id, err)
	}
	return nil
}
