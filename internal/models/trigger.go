package models

import (
	"time"

	"github.com/google/uuid"
)

// TriggerCatalogEntry is a named, stable event identifier that application
// code fires by key. TriggerKey is write-once: updates never change it.
type TriggerCatalogEntry struct {
	ID          uuid.UUID `json:"id"`
	TriggerKey  string    `json:"trigger_key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TriggerAction links a trigger to a template with delivery metadata.
// SequenceOrder is a plain sort key: duplicates and gaps are tolerated and
// execution order is always re-derived by sorting at read time.
type TriggerAction struct {
	ID                       uuid.UUID `json:"id"`
	TriggerID                uuid.UUID `json:"trigger_id"`
	TemplateID               uuid.UUID `json:"template_id"`
	SequenceOrder            int       `json:"sequence_order"`
	DelaySeconds             int       `json:"delay_seconds"`
	RequiresEmailPreference  bool      `json:"requires_email_preference"`
	RequiresSmsPreference    bool      `json:"requires_sms_preference"`
	RetryOnFailure           bool      `json:"retry_on_failure"`
	MaxRetries               int       `json:"max_retries"`
	IsActive                 bool      `json:"is_active"`
	CreatedAt                time.Time `json:"created_at"`
}

// TriggerActionLink is a trigger action joined with its template, as loaded
// by the dispatcher.
type TriggerActionLink struct {
	TriggerAction
	Template ActionTemplate `json:"template"`
}
