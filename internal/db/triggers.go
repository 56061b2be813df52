package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"merchant-backoffice/internal/models"
)

const triggerColumns = `id, trigger_key, name, description, category, is_active, created_at, updated_at`

func scanTrigger(row pgx.Row) (models.TriggerCatalogEntry, error) {
	var t models.TriggerCatalogEntry
	err := row.Scan(
		&t.ID,
		&t.TriggerKey,
		&t.Name,
		&t.Description,
		&t.Category,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

// CreateTrigger inserts a new trigger catalog entry. TriggerKey is unique
// and immutable after creation.
func (d *DB) CreateTrigger(ctx context.Context, t models.TriggerCatalogEntry) (models.TriggerCatalogEntry, error) {
	if t.TriggerKey == "" {
		return models.TriggerCatalogEntry{}, &models.FieldError{Field: "trigger_key", Reason: "required"}
	}
	if t.Name == "" {
		return models.TriggerCatalogEntry{}, &models.FieldError{Field: "name", Reason: "required"}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	query := `
	INSERT INTO trigger_catalog (id, trigger_key, name, description, category, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING created_at, updated_at`

	err := d.Pool.QueryRow(ctx, query,
		t.ID,
		t.TriggerKey,
		t.Name,
		t.Description,
		t.Category,
		t.IsActive,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.TriggerCatalogEntry{}, fmt.Errorf("failed to create trigger %q: %w", t.TriggerKey, err)
	}
	return t, nil
}

// GetTrigger retrieves a trigger catalog entry by ID.
func (d *DB) GetTrigger(ctx context.Context, id uuid.UUID) (models.TriggerCatalogEntry, error) {
	query := `SELECT ` + triggerColumns + ` FROM trigger_catalog WHERE id = $1`
	t, err := scanTrigger(d.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.TriggerCatalogEntry{}, fmt.Errorf("failed to get trigger %s: %w", id, err)
	}
	return t, nil
}

// GetActiveTriggerByKey resolves an active trigger by key. Missing or
// inactive triggers return found=false and no error: firing an unknown key
// is a silent skip, not a failure.
func (d *DB) GetActiveTriggerByKey(ctx context.Context, key string) (models.TriggerCatalogEntry, bool, error) {
	query := `SELECT ` + triggerColumns + ` FROM trigger_catalog WHERE trigger_key = $1 AND is_active = true`
	t, err := scanTrigger(d.Pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TriggerCatalogEntry{}, false, nil
		}
		return models.TriggerCatalogEntry{}, false, fmt.Errorf("failed to resolve trigger %q: %w", key, err)
	}
	return t, true, nil
}

// ListTriggers returns all trigger catalog entries.
func (d *DB) ListTriggers(ctx context.Context) ([]models.TriggerCatalogEntry, error) {
	query := `SELECT ` + triggerColumns + ` FROM trigger_catalog ORDER BY trigger_key`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}
	defer rows.Close()

	var triggers []models.TriggerCatalogEntry
	for rows.Next() {
		t, err := scanTrigger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		triggers = append(triggers, t)
	}
	return triggers, nil
}

// UpdateTrigger updates mutable fields of a trigger. The trigger_key column
// is deliberately not part of the SET list.
func (d *DB) UpdateTrigger(ctx context.Context, t models.TriggerCatalogEntry) error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("invalid trigger ID")
	}

	query := `
	UPDATE trigger_catalog
	SET name = $1,
	    description = $2,
	    category = $3,
	    is_active = $4,
	    updated_at = NOW()
	WHERE id = $5`

	_, err := d.Pool.Exec(ctx, query, t.Name, t.Description, t.Category, t.IsActive, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update trigger: %w", err)
	}
	return nil
}

// DeleteTrigger removes a trigger and its action links.
func (d *DB) DeleteTrigger(ctx context.Context, id uuid.UUID) error {
	if _, err := d.Pool.Exec(ctx, `DELETE FROM trigger_actions WHERE trigger_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete trigger actions: %w", err)
	}
	if _, err := d.Pool.Exec(ctx, `DELETE FROM trigger_catalog WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete trigger: %w", err)
	}
	return nil
}

const actionColumns = `id, trigger_id, template_id, sequence_order, delay_seconds,
	requires_email_preference, requires_sms_preference, retry_on_failure, max_retries, is_active, created_at`

// CreateTriggerAction links a template to a trigger. A zero SequenceOrder is
// replaced with max(existing)+1; this is a creation-time convenience, not a
// uniqueness constraint.
func (d *DB) CreateTriggerAction(ctx context.Context, a models.TriggerAction) (models.TriggerAction, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if a.SequenceOrder == 0 {
		query := `SELECT COALESCE(MAX(sequence_order), 0) + 1 FROM trigger_actions WHERE trigger_id = $1`
		if err := d.Pool.QueryRow(ctx, query, a.TriggerID).Scan(&a.SequenceOrder); err != nil {
			return models.TriggerAction{}, fmt.Errorf("failed to compute sequence order: %w", err)
		}
	}

	query := `
	INSERT INTO trigger_actions (
		id, trigger_id, template_id, sequence_order, delay_seconds,
		requires_email_preference, requires_sms_preference, retry_on_failure, max_retries, is_active, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	RETURNING created_at`

	err := d.Pool.QueryRow(ctx, query,
		a.ID,
		a.TriggerID,
		a.TemplateID,
		a.SequenceOrder,
		a.DelaySeconds,
		a.RequiresEmailPreference,
		a.RequiresSmsPreference,
		a.RetryOnFailure,
		a.MaxRetries,
		a.IsActive,
	).Scan(&a.CreatedAt)
	if err != nil {
		return models.TriggerAction{}, fmt.Errorf("failed to create trigger action: %w", err)
	}
	return a, nil
}

// ListTriggerActions returns all action links for a trigger sorted by
// sequence order ascending, insertion order breaking ties.
func (d *DB) ListTriggerActions(ctx context.Context, triggerID uuid.UUID) ([]models.TriggerAction, error) {
	query := `
	SELECT ` + actionColumns + `
	FROM trigger_actions
	WHERE trigger_id = $1
	ORDER BY sequence_order ASC, created_at ASC, id ASC`

	rows, err := d.Pool.Query(ctx, query, triggerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trigger actions: %w", err)
	}
	defer rows.Close()

	var actions []models.TriggerAction
	for rows.Next() {
		var a models.TriggerAction
		err := rows.Scan(
			&a.ID,
			&a.TriggerID,
			&a.TemplateID,
			&a.SequenceOrder,
			&a.DelaySeconds,
			&a.RequiresEmailPreference,
			&a.RequiresSmsPreference,
			&a.RetryOnFailure,
			&a.MaxRetries,
			&a.IsActive,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trigger action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// ListActiveTriggerActions loads a trigger's active action links joined with
// their templates, in execution order, for the dispatcher.
func (d *DB) ListActiveTriggerActions(ctx context.Context, triggerID uuid.UUID) ([]models.TriggerActionLink, error) {
	query := `
	SELECT
		ta.id, ta.trigger_id, ta.template_id, ta.sequence_order, ta.delay_seconds,
		ta.requires_email_preference, ta.requires_sms_preference, ta.retry_on_failure, ta.max_retries, ta.is_active, ta.created_at,
		t.id, t.name, t.description, t.action_type, t.category, t.config, t.variables, t.is_active, t.version, t.created_at, t.updated_at
	FROM trigger_actions ta
	JOIN action_templates t ON t.id = ta.template_id
	WHERE ta.trigger_id = $1 AND ta.is_active = true
	ORDER BY ta.sequence_order ASC, ta.created_at ASC, ta.id ASC`

	rows, err := d.Pool.Query(ctx, query, triggerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active trigger actions: %w", err)
	}
	defer rows.Close()

	var links []models.TriggerActionLink
	for rows.Next() {
		var l models.TriggerActionLink
		err := rows.Scan(
			&l.ID,
			&l.TriggerID,
			&l.TemplateID,
			&l.SequenceOrder,
			&l.DelaySeconds,
			&l.RequiresEmailPreference,
			&l.RequiresSmsPreference,
			&l.RetryOnFailure,
			&l.MaxRetries,
			&l.IsActive,
			&l.CreatedAt,
			&l.Template.ID,
			&l.Template.Name,
			&l.Template.Description,
			&l.Template.ActionType,
			&l.Template.Category,
			&l.Template.Config,
			&l.Template.Variables,
			&l.Template.IsActive,
			&l.Template.Version,
			&l.Template.CreatedAt,
			&l.Template.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trigger action link: %w", err)
		}
		links = append(links, l)
	}
	return links, nil
}

// UpdateTriggerAction updates an existing action link.
func (d *DB) UpdateTriggerAction(ctx context.Context, a models.TriggerAction) error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("invalid trigger action ID")
	}

	query := `
	UPDATE trigger_actions
	SET template_id = $1,
	    sequence_order = $2,
	    delay_seconds = $3,
	    requires_email_preference = $4,
	    requires_sms_preference = $5,
	    retry_on_failure = $6,
	    max_retries = $7,
	    is_active = $8
	WHERE id = $9`

	_, err := d.Pool.Exec(ctx, query,
		a.TemplateID,
		a.SequenceOrder,
		a.DelaySeconds,
		a.RequiresEmailPreference,
		a.RequiresSmsPreference,
		a.RetryOnFailure,
		a.MaxRetries,
		a.IsActive,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trigger action: %w", err)
	}
	return nil
}

// DeleteTriggerAction removes an action link.
func (d *DB) DeleteTriggerAction(ctx context.Context, id uuid.UUID) error {
	if _, err := d.Pool.Exec(ctx, `DELETE FROM trigger_actions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete trigger action: %w", err)
	}
	return nil
}
