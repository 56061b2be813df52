package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"merchant-backoffice/internal/models"
)

const templateColumns = `id, name, description, action_type, category, config, variables, is_active, version, created_at, updated_at`

func scanTemplate(row pgx.Row) (models.ActionTemplate, error) {
	var t models.ActionTemplate
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.ActionType,
		&t.Category,
		&t.Config,
		&t.Variables,
		&t.IsActive,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

// CreateTemplate validates and inserts a new action template.
func (d *DB) CreateTemplate(ctx context.Context, t models.ActionTemplate) (models.ActionTemplate, error) {
	if err := t.Validate(); err != nil {
		return models.ActionTemplate{}, err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Version == 0 {
		t.Version = 1
	}

	query := `
	INSERT INTO action_templates (
		id, name, description, action_type, category, config, variables, is_active, version, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	RETURNING created_at, updated_at`

	err := d.Pool.QueryRow(ctx, query,
		t.ID,
		t.Name,
		t.Description,
		t.ActionType,
		t.Category,
		t.Config,
		t.Variables,
		t.IsActive,
		t.Version,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.ActionTemplate{}, fmt.Errorf("failed to create template: %w", err)
	}
	return t, nil
}

// GetTemplate retrieves a template by ID.
func (d *DB) GetTemplate(ctx context.Context, id uuid.UUID) (models.ActionTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM action_templates WHERE id = $1`
	t, err := scanTemplate(d.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.ActionTemplate{}, fmt.Errorf("failed to get template %s: %w", id, err)
	}
	return t, nil
}

// GetTemplateByName retrieves an active template by its unique name. The
// second return value reports whether the template exists.
func (d *DB) GetTemplateByName(ctx context.Context, name string) (models.ActionTemplate, bool, error) {
	query := `SELECT ` + templateColumns + ` FROM action_templates WHERE name = $1 AND is_active = true`
	t, err := scanTemplate(d.Pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ActionTemplate{}, false, nil
		}
		return models.ActionTemplate{}, false, fmt.Errorf("failed to get template %q: %w", name, err)
	}
	return t, true, nil
}

// ListTemplates returns templates filtered by action type and/or category.
// Empty filter values match everything.
func (d *DB) ListTemplates(ctx context.Context, actionType, category string) ([]models.ActionTemplate, error) {
	query := `
	SELECT ` + templateColumns + `
	FROM action_templates
	WHERE ($1 = '' OR action_type = $1)
	  AND ($2 = '' OR category = $2)
	ORDER BY name`

	rows, err := d.Pool.Query(ctx, query, actionType, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.ActionTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// UpdateTemplate validates and updates an existing template, bumping version.
func (d *DB) UpdateTemplate(ctx context.Context, t models.ActionTemplate) (models.ActionTemplate, error) {
	if t.ID == uuid.Nil {
		return models.ActionTemplate{}, fmt.Errorf("invalid template ID")
	}
	if err := t.Validate(); err != nil {
		return models.ActionTemplate{}, err
	}

	query := `
	UPDATE action_templates
	SET name = $1,
	    description = $2,
	    action_type = $3,
	    category = $4,
	    config = $5,
	    variables = $6,
	    is_active = $7,
	    version = version + 1,
	    updated_at = NOW()
	WHERE id = $8
	RETURNING version, created_at, updated_at`

	err := d.Pool.QueryRow(ctx, query,
		t.Name,
		t.Description,
		t.ActionType,
		t.Category,
		t.Config,
		t.Variables,
		t.IsActive,
		t.ID,
	).Scan(&t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.ActionTemplate{}, fmt.Errorf("failed to update template: %w", err)
	}
	return t, nil
}

// BlockingTriggers names the triggers with an active action still referencing
// the template. A detached action (is_active = false) does not block.
func (d *DB) BlockingTriggers(ctx context.Context, templateID uuid.UUID) ([]string, error) {
	query := `
	SELECT DISTINCT tc.name
	FROM trigger_actions ta
	JOIN trigger_catalog tc ON tc.id = ta.trigger_id
	WHERE ta.template_id = $1 AND ta.is_active = true
	ORDER BY tc.name`

	rows, err := d.Pool.Query(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to check template usage: %w", err)
	}
	defer rows.Close()

	var blocking []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan trigger name: %w", err)
		}
		blocking = append(blocking, name)
	}
	return blocking, nil
}

// guardTemplateDelete is the delete decision: a template still referenced by
// active trigger actions cannot be removed, and the error names every
// blocking trigger so the caller knows what to detach.
func guardTemplateDelete(name string, blocking []string) error {
	if len(blocking) > 0 {
		return &models.InUseError{Name: name, Triggers: blocking}
	}
	return nil
}

// DeleteTemplate removes a template unless an active trigger action still
// references it, in which case an InUseError naming the blocking triggers is
// returned and nothing is deleted.
func (d *DB) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	t, err := d.GetTemplate(ctx, id)
	if err != nil {
		return err
	}

	blocking, err := d.BlockingTriggers(ctx, id)
	if err != nil {
		return err
	}
	if err := guardTemplateDelete(t.Name, blocking); err != nil {
		return err
	}

	if _, err := d.Pool.Exec(ctx, `DELETE FROM action_templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// DuplicateTemplate copies a template into a new inactive row with the name
// suffixed "(Copy)".
func (d *DB) DuplicateTemplate(ctx context.Context, id uuid.UUID) (models.ActionTemplate, error) {
	t, err := d.GetTemplate(ctx, id)
	if err != nil {
		return models.ActionTemplate{}, err
	}
	t.ID = uuid.New()
	t.Name = t.Name + " (Copy)"
	t.IsActive = false
	t.Version = 1
	return d.CreateTemplate(ctx, t)
}
