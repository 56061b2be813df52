package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"merchant-backoffice/internal/models"
)

// GetPreference returns a recipient's channel opt-outs. A missing row means
// fully opted in and is not an error.
func (d *DB) GetPreference(ctx context.Context, recipient string) (models.NotificationPreference, error) {
	query := `
	SELECT recipient, email_opt_out, sms_opt_out, updated_at
	FROM notification_preferences
	WHERE recipient = $1`

	var p models.NotificationPreference
	err := d.Pool.QueryRow(ctx, query, recipient).Scan(&p.Recipient, &p.EmailOptOut, &p.SmsOptOut, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.NotificationPreference{Recipient: recipient}, nil
		}
		return models.NotificationPreference{}, fmt.Errorf("failed to get preference for %s: %w", recipient, err)
	}
	return p, nil
}

// UpsertPreference stores a recipient's channel opt-outs.
func (d *DB) UpsertPreference(ctx context.Context, p models.NotificationPreference) error {
	query := `
	INSERT INTO notification_preferences (recipient, email_opt_out, sms_opt_out, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (recipient)
	DO UPDATE SET email_opt_out = $2, sms_opt_out = $3, updated_at = NOW()`

	if _, err := d.Pool.Exec(ctx, query, p.Recipient, p.EmailOptOut, p.SmsOptOut); err != nil {
		return fmt.Errorf("failed to upsert preference for %s: %w", p.Recipient, err)
	}
	return nil
}
