package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"merchant-backoffice/internal/models"
)

const signatureColumns = `id, merchant_application_id, prospect_id, signer_name, signer_email, role_key,
	status, requested_at, expires_at, completed_at, notes, reminder_3day_sent_at, reminder_1day_sent_at`

func scanSignature(row pgx.Row) (models.SignatureCapture, error) {
	var s models.SignatureCapture
	err := row.Scan(
		&s.ID,
		&s.MerchantApplicationID,
		&s.ProspectID,
		&s.SignerName,
		&s.SignerEmail,
		&s.RoleKey,
		&s.Status,
		&s.RequestedAt,
		&s.ExpiresAt,
		&s.CompletedAt,
		&s.Notes,
		&s.Reminder3DaySentAt,
		&s.Reminder1DaySentAt,
	)
	return s, err
}

// CreateSignature inserts a new pending signature request. A zero ExpiresAt
// gets the standard 7-day window.
func (d *DB) CreateSignature(ctx context.Context, s models.SignatureCapture) (models.SignatureCapture, error) {
	if s.SignerEmail == "" {
		return models.SignatureCapture{}, &models.FieldError{Field: "signer_email", Reason: "required"}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.RequestedAt.IsZero() {
		s.RequestedAt = time.Now()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = s.RequestedAt.Add(7 * 24 * time.Hour)
	}
	s.Status = models.SignatureStatusRequested

	query := `
	INSERT INTO signature_captures (
		id, merchant_application_id, prospect_id, signer_name, signer_email, role_key,
		status, requested_at, expires_at, notes
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := d.Pool.Exec(ctx, query,
		s.ID,
		s.MerchantApplicationID,
		s.ProspectID,
		s.SignerName,
		s.SignerEmail,
		s.RoleKey,
		s.Status,
		s.RequestedAt,
		s.ExpiresAt,
		s.Notes,
	)
	if err != nil {
		return models.SignatureCapture{}, fmt.Errorf("failed to create signature request: %w", err)
	}
	return s, nil
}

// GetSignature retrieves a signature request by ID.
func (d *DB) GetSignature(ctx context.Context, id uuid.UUID) (models.SignatureCapture, error) {
	query := `SELECT ` + signatureColumns + ` FROM signature_captures WHERE id = $1`
	s, err := scanSignature(d.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.SignatureCapture{}, fmt.Errorf("failed to get signature %s: %w", id, err)
	}
	return s, nil
}

// ListSignatures returns signature requests, optionally filtered by status.
func (d *DB) ListSignatures(ctx context.Context, status string) ([]models.SignatureCapture, error) {
	query := `
	SELECT ` + signatureColumns + `
	FROM signature_captures
	WHERE ($1 = '' OR status = $1)
	ORDER BY requested_at DESC`

	rows, err := d.Pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}
	defer rows.Close()

	var sigs []models.SignatureCapture
	for rows.Next() {
		s, err := scanSignature(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signature: %w", err)
		}
		sigs = append(sigs, s)
	}
	return sigs, nil
}

// ListRequestedSignatures returns every signature still awaiting completion,
// for the expiration sweep.
func (d *DB) ListRequestedSignatures(ctx context.Context) ([]models.SignatureCapture, error) {
	return d.ListSignatures(ctx, models.SignatureStatusRequested)
}

// CompleteSignature transitions a request to completed.
func (d *DB) CompleteSignature(ctx context.Context, id uuid.UUID) error {
	query := `
	UPDATE signature_captures
	SET status = $1, completed_at = NOW()
	WHERE id = $2 AND status = $3`

	result, err := d.Pool.Exec(ctx, query, models.SignatureStatusCompleted, id, models.SignatureStatusRequested)
	if err != nil {
		return fmt.Errorf("failed to complete signature %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("signature %s is not in requested state", id)
	}
	return nil
}

// ExpireSignature transitions a request to expired and appends a note.
func (d *DB) ExpireSignature(ctx context.Context, id uuid.UUID, note string) error {
	query := `
	UPDATE signature_captures
	SET status = $1,
	    notes = CASE WHEN notes = '' THEN $2 ELSE notes || E'\n' || $2 END
	WHERE id = $3 AND status = $4`

	_, err := d.Pool.Exec(ctx, query, models.SignatureStatusExpired, note, id, models.SignatureStatusRequested)
	if err != nil {
		return fmt.Errorf("failed to expire signature %s: %w", id, err)
	}
	return nil
}

// MarkReminderSent stamps the 3-day or 1-day reminder timestamp so the sweep
// never sends the same reminder twice.
func (d *DB) MarkReminderSent(ctx context.Context, id uuid.UUID, kind string, at time.Time) error {
	var column string
	switch kind {
	case "3day":
		column = "reminder_3day_sent_at"
	case "1day":
		column = "reminder_1day_sent_at"
	default:
		return fmt.Errorf("unknown reminder kind %q", kind)
	}

	query := fmt.Sprintf(`UPDATE signature_captures SET %s = $1 WHERE id = $2`, column)
	if _, err := d.Pool.Exec(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to mark %s reminder sent for %s: %w", kind, id, err)
	}
	return nil
}
