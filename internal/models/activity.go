package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity statuses for one attempted channel send.
const (
	ActivityStatusSent    = "sent"
	ActivityStatusFailed  = "failed"
	ActivityStatusSkipped = "skipped"
)

// ActivityEntry is the per-attempt record of a channel send's outcome,
// aggregated by the analytics view.
type ActivityEntry struct {
	ID         uuid.UUID `json:"id"`
	TriggerKey string    `json:"trigger_key"`
	TemplateID uuid.UUID `json:"template_id"`
	Channel    string    `json:"channel"`
	Recipient  string    `json:"recipient"`
	Subject    string    `json:"subject"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActivitySummary is one aggregated channel/status bucket.
type ActivitySummary struct {
	Channel string `json:"channel"`
	Status  string `json:"status"`
	Count   int    `json:"count"`
}
