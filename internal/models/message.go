package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a fully rendered outbound communication, ready for a channel
// sender. Only the fields relevant to Channel are populated.
type Message struct {
	Channel    string            `json:"channel"`
	TriggerKey string            `json:"trigger_key"`
	TemplateID uuid.UUID         `json:"template_id"`
	Recipient  string            `json:"recipient"`
	Subject    string            `json:"subject,omitempty"`
	Body       string            `json:"body,omitempty"`
	HTML       string            `json:"html,omitempty"`
	Title      string            `json:"title,omitempty"`
	URL        string            `json:"url,omitempty"`
	Method     string            `json:"method,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	WebhookURL string            `json:"webhook_url,omitempty"`
	RoomOrChan string            `json:"room_or_channel,omitempty"`
}

// Outbox statuses. Pending entries are eligible for pickup; processing marks
// an entry claimed by a worker so no other poller re-reads it.
const (
	OutboxStatusPending    = "pending"
	OutboxStatusProcessing = "processing"
	OutboxStatusSent       = "sent"
	OutboxStatusFailed     = "failed"
)

// OutboxEntry is a deferred or retryable send owned by the outbox worker.
// NotBefore delays delivery; AttemptsRemaining counts sends left before the
// entry is finalized as failed.
type OutboxEntry struct {
	ID                uuid.UUID `json:"id"`
	Payload           Message   `json:"payload"`
	NotBefore         time.Time `json:"not_before"`
	AttemptsRemaining int       `json:"attempts_remaining"`
	Status            string    `json:"status"`
	LastError         string    `json:"last_error"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NotificationPreference records a recipient's channel opt-outs. The zero
// value (no row) means opted in everywhere.
type NotificationPreference struct {
	Recipient   string    `json:"recipient"`
	EmailOptOut bool      `json:"email_opt_out"`
	SmsOptOut   bool      `json:"sms_opt_out"`
	UpdatedAt   time.Time `json:"updated_at"`
}
